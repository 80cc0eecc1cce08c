package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"qcm-challenge/internal/domain"
)

const (
	polesFile     = "poles.json"
	questionsFile = "questions.json"
)

// Overrides holds whatever the data source provided. Nil slices mean "keep defaults".
type Overrides struct {
	Poles     []string
	Questions []domain.Question
}

// Loader fetches poles.json and questions.json once, from a directory or an
// http(s) base URL. Missing or malformed documents are skipped.
type Loader struct {
	source string
	client *http.Client
}

func NewLoader(source string) *Loader {
	return &Loader{
		source: strings.TrimRight(source, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Load never fails: any document that cannot be read or is not an array is ignored.
func (l *Loader) Load(ctx context.Context) Overrides {
	var out Overrides
	if l.source == "" {
		return out
	}
	if raw, err := l.fetch(ctx, polesFile); err == nil {
		out.Poles, _ = decodePoles(raw)
	}
	if raw, err := l.fetch(ctx, questionsFile); err == nil {
		out.Questions, _ = decodeQuestions(raw)
	}
	return out
}

func (l *Loader) fetch(ctx context.Context, name string) ([]byte, error) {
	if !strings.HasPrefix(l.source, "http://") && !strings.HasPrefix(l.source, "https://") {
		return os.ReadFile(filepath.Join(l.source, name))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source+"/"+name, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", name, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var errNotArray = errors.New("document is not an array")

// decodePoles accepts ["name", ...] and [{"id":..,"name":..}, ...].
func decodePoles(raw []byte) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, errNotArray
	}
	poles := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			poles = append(poles, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.Name != "" {
			poles = append(poles, obj.Name)
		}
	}
	return poles, nil
}

// decodeQuestions drops entries whose correct index does not point at an option.
func decodeQuestions(raw []byte) ([]domain.Question, error) {
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil || questions == nil {
		return nil, errNotArray
	}
	valid := questions[:0]
	for _, q := range questions {
		if q.ValidCorrect() {
			valid = append(valid, q)
		}
	}
	return valid, nil
}
