package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{
			name: "pid and title",
			node: Node{Pid: strptr("42"), Title: "fix"},
			want: "[42] fix",
		},
		{
			name: "blank pid gets placeholder",
			node: Node{Pid: strptr(""), Title: "fix"},
			want: "[<NULL>] fix",
		},
		{
			name: "blank pid and blank title",
			node: Node{Pid: strptr("")},
			want: "[<NULL>] ",
		},
		{
			name: "absent pid yields no label",
			node: Node{Title: "fix"},
			want: "",
		},
		{
			name: "synthetic node has no label",
			node: Node{Hid: "empty-before-0", Empty: true},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.node))
		})
	}
}
