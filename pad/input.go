package pad

// MaxLabelInput bounds the typed label text.
const MaxLabelInput = 4

// LabelInput is the label text being typed next to the surface. It is
// validated only when a training request is made.
type LabelInput struct {
	text []rune
}

// Type appends r, ignoring input past MaxLabelInput runes.
func (l *LabelInput) Type(r rune) {
	if len(l.text) >= MaxLabelInput {
		return
	}
	l.text = append(l.text, r)
}

// Backspace deletes the last rune.
func (l *LabelInput) Backspace() {
	if len(l.text) > 0 {
		l.text = l.text[:len(l.text)-1]
	}
}

func (l *LabelInput) Reset() {
	l.text = l.text[:0]
}

func (l *LabelInput) String() string {
	return string(l.text)
}
