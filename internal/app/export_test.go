package app

import "time"

// SetClock replaces the id clock of the bank.
func (b *QuestionBank) SetClock(now func() time.Time) { b.clock = now }
