package toolpath

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads G-code written by Program.WriteTo. Motion lines without
// both X and Y words, such as the final retract, and framing lines are
// not returned as instructions.
func Parse(r io.Reader) (Program, error) {
	var p Program
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || line == "%":
			continue
		case strings.HasPrefix(line, "O"):
			word, _, _ := strings.Cut(line, " ")
			id, err := strconv.Atoi(word[1:])
			if err != nil {
				return p, fmt.Errorf("line %d: bad program number %q", lineno, word)
			}
			p.ID = id
		case strings.HasPrefix(line, "("):
			p.Instructions = append(p.Instructions, Comment{Text: strings.TrimSuffix(line[1:], ")")})
		case strings.HasPrefix(line, "G00") || strings.HasPrefix(line, "G01"):
			words, err := parseWords(line)
			if err != nil {
				return p, fmt.Errorf("line %d: %w", lineno, err)
			}
			_, hasX := words['X']
			_, hasY := words['Y']
			if !hasX || !hasY {
				continue
			}
			if strings.HasPrefix(line, "G00") {
				p.Instructions = append(p.Instructions, Rapid{X: words['X'], Y: words['Y'], Z: words['Z']})
			} else {
				p.Instructions = append(p.Instructions, Engage{X: words['X'], Y: words['Y'], Z: words['Z'], Feed: words['F']})
			}
		case strings.HasPrefix(line, "M102"):
			words, err := parseWords(line)
			if err != nil {
				return p, fmt.Errorf("line %d: %w", lineno, err)
			}
			p.Instructions = append(p.Instructions, SetForce{Value: words['P']})
		case line == "M104":
			p.Instructions = append(p.Instructions, ClearForce{})
		}
	}
	return p, sc.Err()
}

// parseWords returns the numeric address words of a line, skipping the
// leading command word.
func parseWords(line string) (map[byte]float64, error) {
	fields := strings.Fields(line)
	words := make(map[byte]float64, len(fields))
	for _, f := range fields[1:] {
		if len(f) < 2 {
			return nil, fmt.Errorf("malformed word %q", f)
		}
		v, err := strconv.ParseFloat(f[1:], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed word %q: %w", f, err)
		}
		words[f[0]] = v
	}
	return words, nil
}
