package graph

import "fmt"

// pidPlaceholder stands in for a pid that is present but blank.
const pidPlaceholder = "<NULL>"

// Label renders the display text for a node: empty when the node carries no
// pid field at all, otherwise "[pid] title" with a placeholder for a blank pid.
func Label(n Node) string {
	if n.Pid == nil {
		return ""
	}
	pid := *n.Pid
	if pid == "" {
		pid = pidPlaceholder
	}
	return fmt.Sprintf("[%s] %s", pid, n.Title)
}
