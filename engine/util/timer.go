package util

import (
	"fmt"
	"strings"
	"time"
)

type StageTiming struct {
	name  string
	last  time.Duration
	total time.Duration
	count int64
	min   time.Duration
	max   time.Duration
}

func (s *StageTiming) Average() time.Duration {
	if s.count == 0 {
		return 0
	}
	return s.total / time.Duration(s.count)
}

func (s *StageTiming) Last() time.Duration {
	return s.last
}

func (s *StageTiming) Count() int64 {
	return s.count
}

func (s *StageTiming) String() string {
	if s.count == 1 {
		return fmt.Sprintf("%s: %s", s.name, s.last)
	}
	return fmt.Sprintf("%s: last %s, avg %s, min %s, max %s (%d runs)", s.name, s.last, s.Average(), s.min, s.max, s.count)
}

// Timer keeps named wall clock timings in the order the names were first started.
type Timer struct {
	stages     map[string]*StageTiming
	stageNames []string
}

func NewTimer() *Timer {
	return &Timer{
		stages: make(map[string]*StageTiming),
	}
}

func (t *Timer) Stage(name string) *StageTiming {
	return t.stages[name]
}

// Start begins timing name and returns the function that stops it.
func (t *Timer) Start(name string) func() time.Duration {
	stage, ok := t.stages[name]
	if !ok {
		t.stageNames = append(t.stageNames, name)
		stage = &StageTiming{name: name}
		t.stages[name] = stage
	}
	start := time.Now()
	return func() time.Duration {
		elapsed := time.Since(start)
		stage.last = elapsed
		stage.total += elapsed
		stage.count++
		if stage.count == 1 || elapsed < stage.min {
			stage.min = elapsed
		}
		if elapsed > stage.max {
			stage.max = elapsed
		}
		return elapsed
	}
}

func (t *Timer) String() string {
	lines := make([]string, len(t.stageNames))
	for i, name := range t.stageNames {
		lines[i] = t.stages[name].String()
	}
	return strings.Join(lines, "\n")
}
