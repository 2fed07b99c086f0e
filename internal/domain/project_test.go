package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProject(subtasks ...bool) *Project {
	task := NewTask("task")
	for _, done := range subtasks {
		task.Children = append(task.Children, NewSubtask("sub", done, ""))
	}
	phase := NewPhase("phase")
	phase.Children = []Task{task}
	proj := NewProject("Demo", "")
	proj.Structure = []Phase{phase}
	return proj
}

func TestProjectProgress(t *testing.T) {
	tests := []struct {
		name     string
		subtasks []bool
		want     float64
	}{
		{name: "no subtasks", subtasks: nil, want: 0},
		{name: "none completed", subtasks: []bool{false, false}, want: 0},
		{name: "one of two", subtasks: []bool{true, false}, want: 50},
		{name: "all completed", subtasks: []bool{true, true, true}, want: 100},
		{name: "one of three", subtasks: []bool{true, false, false}, want: 100.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildProject(tt.subtasks...)
			assert.InDelta(t, tt.want, p.Progress(), 1e-9)
		})
	}
}

func TestProjectProgressIgnoresEmptyBranches(t *testing.T) {
	// Empty phases and tasks contribute nothing to the totals.
	p := buildProject(true, false)
	p.Structure = append(p.Structure, NewPhase("empty phase"))
	p.Structure[0].Children = append(p.Structure[0].Children, NewTask("empty task"))

	total, completed := p.SubtaskCounts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, completed)
	assert.InDelta(t, 50.0, p.Progress(), 1e-9)
}

func TestNewProjectDefaults(t *testing.T) {
	p := NewProject("Demo", "")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "leer", p.Template)
	assert.NotEmpty(t, p.CreatedAt)
	assert.Empty(t, p.Structure)

	q := NewProject("Demo", "Softwareentwicklung")
	assert.Equal(t, "Softwareentwicklung", q.Template)
	assert.NotEqual(t, p.ID, q.ID)
}

func TestSampleProject(t *testing.T) {
	p := SampleProject()
	require.Len(t, p.Structure, 2)

	total, completed := p.SubtaskCounts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, completed)
	assert.InDelta(t, 50.0, p.Progress(), 1e-9)

	// Node ids are unique within the project.
	seen := map[string]bool{}
	for _, phase := range p.Structure {
		assert.False(t, seen[phase.ID])
		seen[phase.ID] = true
		for _, task := range phase.Children {
			assert.False(t, seen[task.ID])
			seen[task.ID] = true
			for _, sub := range task.Children {
				assert.False(t, seen[sub.ID])
				seen[sub.ID] = true
			}
		}
	}
}
