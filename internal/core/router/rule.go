// Package router maps a classified intent onto a task with ordered, data-valued rules
package router

import (
	"fmt"
	"strings"

	"opsroute/internal/core/params"
)

// Task is what the caller should do with the question
type Task string

// Tasks
const (
	TaskSQL      Task = "sql"
	TaskRAG      Task = "rag"
	TaskOptimize Task = "optimize"
)

// Valid reports whether t is a known task
func (t Task) Valid() bool { return t == TaskSQL || t == TaskRAG || t == TaskOptimize }

// Route sources
const (
	SourceDeterministic = "deterministic"
	SourceLLM           = "llm"
)

// Confidence floors
const (
	FloorExact       = 0.95
	FloorSpecialized = 0.9
	FloorGeneric     = 0.8
)

// Minimum classifier confidence per rule family
const (
	MinSpecialized = 0.7
	MinModerate    = 0.6
	MinGeneric     = 0.5
)

// Guard is a parameter precondition with a human description for traces
type Guard struct {
	Desc string
	Test func(params.Bag) bool
}

// Rule is one router entry; the router tries rules in slice order
type Rule struct {
	Name          string
	Intents       []string
	MinConfidence float64
	Guard         *Guard
	Task          Task
	Floor         float64
	Template      string
	Reason        string // fmt verbs: intent, params summary, rule name
}

func (r Rule) matchesIntent(name string) bool {
	for _, i := range r.Intents {
		if i == name {
			return true
		}
	}
	return false
}

func (r Rule) reason(intent string, bag params.Bag) string {
	return fmt.Sprintf(r.Reason, intent, bag.Summary(), r.Name)
}

// AtLeast guards on a parameter holding n or more values
func AtLeast(param string, n int) *Guard {
	return &Guard{
		Desc: fmt.Sprintf("%s >= %d", param, n),
		Test: func(b params.Bag) bool { return b.Count(param) >= n },
	}
}

// Exactly guards on a parameter holding exactly n values
func Exactly(param string, n int) *Guard {
	return &Guard{
		Desc: fmt.Sprintf("%s == %d", param, n),
		Test: func(b params.Bag) bool { return b.Count(param) == n },
	}
}

// AnyOf passes when any named parameter is present
func AnyOf(names ...string) *Guard {
	return &Guard{
		Desc: "any of " + strings.Join(names, "|"),
		Test: func(b params.Bag) bool {
			for _, n := range names {
				if b.Has(n) {
					return true
				}
			}
			return false
		},
	}
}
