package app

import "qcm-challenge/internal/domain"

// DefaultQuestions is the built-in sample bank used when neither the store nor
// the data source provides one.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Text: "What does HTML stand for?", Options: []string{
			"HyperText Markup Language", "High Tech Modern Language",
			"Home Tool Markup Language", "Hyperlinks and Text Markup Language",
		}, Correct: 0},
		{ID: 2, Text: "Which CSS property is used to control the text size?", Options: []string{
			"font-style", "text-size", "font-size", "text-style",
		}, Correct: 2},
		{ID: 3, Text: "What is the correct JavaScript syntax to change the HTML content?", Options: []string{
			"document.getElementById('p').innerHTML = 'Hello'", "document.getElement('p').innerHTML = 'Hello'",
			"document.getElementById('p').textContent = 'Hello'", "None of the above",
		}, Correct: 0},
		{ID: 4, Text: "Which of the following is NOT a JavaScript data type?", Options: []string{
			"String", "Number", "Boolean", "Integer",
		}, Correct: 3},
		{ID: 5, Text: "What does API stand for?", Options: []string{
			"Application Programming Interface", "Advanced Programming Integration",
			"Application Process Interface", "Advanced Process Integration",
		}, Correct: 0},
		{ID: 6, Text: "Which HTTP method is used to retrieve data?", Options: []string{
			"POST", "PUT", "GET", "DELETE",
		}, Correct: 2},
		{ID: 7, Text: "What is the purpose of localStorage?", Options: []string{
			"To store data on the server", "To store data in the browser persistently",
			"To store temporary session data", "To encrypt data",
		}, Correct: 1},
		{ID: 8, Text: "Which framework is used for building user interfaces in JavaScript?", Options: []string{
			"Django", "Spring Boot", "React", "Laravel",
		}, Correct: 2},
		{ID: 9, Text: "What does REST stand for?", Options: []string{
			"Remote Execution and Storage Transfer", "Representational State Transfer",
			"Resource Element Static Transfer", "Remote Element System Transfer",
		}, Correct: 1},
		{ID: 10, Text: "Which of the following is a NoSQL database?", Options: []string{
			"PostgreSQL", "MongoDB", "MySQL", "Oracle",
		}, Correct: 1},
	}
}

// DefaultPoles is the built-in pole list.
func DefaultPoles() []string {
	return []string{
		"Web Development",
		"Mobile Development",
		"Data Science",
		"Cloud Computing",
		"Cybersecurity",
	}
}

// DefaultSiteSettings is the branding used until an admin saves their own.
func DefaultSiteSettings() domain.SiteSettings {
	return domain.SiteSettings{Title: "Treasure Quest", PrimaryColor: "#d4af37"}
}
