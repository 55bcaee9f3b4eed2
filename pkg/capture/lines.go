package capture

// lineSplitter cuts decoded text into lines. A line ends at "\n", "\r" or
// "\r\n"; terminators stay attached to their line. A chunk ending in a bare
// "\r" is held back, since the next chunk may complete a "\r\n" pair.
type lineSplitter struct {
	pending string
}

// Push appends text and returns every completed line.
func (s *lineSplitter) Push(text string) []string {
	buf := s.pending + text
	lines := []string{}
	start := 0
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '\n':
			lines = append(lines, buf[start:i+1])
			start = i + 1
		case '\r':
			if i+1 == len(buf) {
				// maybe the first half of a "\r\n" pair
				continue
			}
			if buf[i+1] == '\n' {
				i++
			}
			lines = append(lines, buf[start:i+1])
			start = i + 1
		}
	}
	s.pending = buf[start:]
	return lines
}

// Flush drains the unterminated tail, if any.
func (s *lineSplitter) Flush() string {
	out := s.pending
	s.pending = ""
	return out
}
