package lexer

import (
	"bufio"
	"io"
	"strings"
)

// maxLineBytes bounds a single source line.
const maxLineBytes = 1 << 20

// Line is one source line split into whitespace separated tokens. Quoted strings
// are not kept together; statement handlers rejoin them.
type Line struct {
	Number int
	Text   string
	Tokens []string
}

// IsComment reports whether the line starts with the comment marker.
func (l Line) IsComment() bool {
	return len(l.Tokens) > 0 && strings.HasPrefix(l.Tokens[0], "//")
}

type Lexer struct {
	scanner *bufio.Scanner
	line    int
}

func NewLexer(r io.Reader) *Lexer {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Lexer{scanner: s}
}

// NextLine returns the next line, or io.EOF when the input is exhausted.
func (l *Lexer) NextLine() (Line, error) {
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return Line{}, err
		}
		return Line{}, io.EOF
	}
	l.line++
	text := l.scanner.Text()
	return Line{Number: l.line, Text: text, Tokens: Tokenize(text)}, nil
}

// ReadLines reads the whole input.
func ReadLines(r io.Reader) ([]Line, error) {
	l := NewLexer(r)
	var lines []Line
	for {
		line, err := l.NextLine()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

// Tokenize splits a line on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}
