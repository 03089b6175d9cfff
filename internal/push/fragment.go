package push

import "strings"

// Renderer produces the markup pushed for each event kind.
type Renderer interface {
	RenderProgress(percent int) (string, error)
	RenderDone() (string, error)
}

// Fragment kinds, also used as metric labels.
const (
	KindProgress = "progress"
	KindDone     = "done"
)

var lineBreaks = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")

// Flatten strips line breaks so a fragment travels as exactly one SSE
// message; the transport would otherwise split it at each newline.
func Flatten(fragment string) string {
	return lineBreaks.Replace(fragment)
}
