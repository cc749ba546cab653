// parse.go - Textual grammar for finalize commands.
//
//	get <mapping>[<key>] into <dest>;
//	get.or_use <mapping>[<key>] <default> into <dest>;
//	set <value> into <mapping>[<key>];
//	add|sub|mul <a> <b> into <dest>;
//
// Variants are tried with get.or_use ahead of get, since its keyword is a
// textual superset. Parsing then re-rendering with String reproduces the
// input exactly.

package finalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// FromString parses a single command. Trailing unconsumed input is a hard
// parse error.
func FromString(text string) (Command, error) {
	cmd, remainder, err := ParseCommand(text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(remainder) != "" {
		return nil, fmt.Errorf("%w: invalid trailing input %q", network.ErrMalformedInput, remainder)
	}
	return cmd, nil
}

// ParseCommand parses one command from the front of the text and returns the
// unconsumed remainder.
func ParseCommand(text string) (Command, string, error) {
	s := &scanner{src: text}
	s.ws()
	word, err := s.word()
	if err != nil {
		return nil, "", err
	}

	var cmd Command
	switch word {
	case "get.or_use":
		cmd, err = parseGetOrUse(s)
	case "get":
		cmd, err = parseGet(s)
	case "set":
		cmd, err = parseSet(s)
	case "add", "sub", "mul":
		cmd, err = parseInstruction(s, word)
	default:
		return nil, "", fmt.Errorf("%w: unknown command '%s'", network.ErrMalformedInput, word)
	}
	if err != nil {
		return nil, "", err
	}
	return cmd, s.rest(), nil
}

func parseGet(s *scanner) (Command, error) {
	mapping, key, err := parseMappingAccess(s)
	if err != nil {
		return nil, err
	}
	dest, err := parseInto(s)
	if err != nil {
		return nil, err
	}
	return &Get{Mapping: mapping, Key: key, Destination: dest}, nil
}

func parseGetOrUse(s *scanner) (Command, error) {
	mapping, key, err := parseMappingAccess(s)
	if err != nil {
		return nil, err
	}
	s.ws()
	def, err := s.operand()
	if err != nil {
		return nil, err
	}
	dest, err := parseInto(s)
	if err != nil {
		return nil, err
	}
	return &GetOrUse{Mapping: mapping, Key: key, Default: def, Destination: dest}, nil
}

func parseSet(s *scanner) (Command, error) {
	s.ws()
	value, err := s.operand()
	if err != nil {
		return nil, err
	}
	s.ws()
	if err := s.keyword("into"); err != nil {
		return nil, err
	}
	mapping, key, err := parseMappingAccess(s)
	if err != nil {
		return nil, err
	}
	s.ws()
	if err := s.expect(';'); err != nil {
		return nil, err
	}
	return &Set{Value: value, Mapping: mapping, Key: key}, nil
}

func parseInstruction(s *scanner, op string) (Command, error) {
	var opcode Opcode
	switch op {
	case "add":
		opcode = OpAdd
	case "sub":
		opcode = OpSub
	case "mul":
		opcode = OpMul
	}
	s.ws()
	a, err := s.operand()
	if err != nil {
		return nil, err
	}
	s.ws()
	b, err := s.operand()
	if err != nil {
		return nil, err
	}
	dest, err := parseInto(s)
	if err != nil {
		return nil, err
	}
	return &Instruction{Opcode: opcode, Operands: [2]Operand{a, b}, Destination: dest}, nil
}

// parseMappingAccess consumes "<mapping>[<key>]".
func parseMappingAccess(s *scanner) (string, Operand, error) {
	s.ws()
	mapping, err := s.identifier()
	if err != nil {
		return "", Operand{}, err
	}
	if err := s.expect('['); err != nil {
		return "", Operand{}, err
	}
	key, err := s.operand()
	if err != nil {
		return "", Operand{}, err
	}
	if err := s.expect(']'); err != nil {
		return "", Operand{}, err
	}
	return mapping, key, nil
}

// parseInto consumes "into r<N>;".
func parseInto(s *scanner) (uint64, error) {
	s.ws()
	if err := s.keyword("into"); err != nil {
		return 0, err
	}
	s.ws()
	dest, err := s.register()
	if err != nil {
		return 0, err
	}
	s.ws()
	if err := s.expect(';'); err != nil {
		return 0, err
	}
	return dest, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) rest() string { return s.src[s.pos:] }

func (s *scanner) ws() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t' || s.src[s.pos] == '\n') {
		s.pos++
	}
}

// word consumes a run of keyword characters (letters, digits, '.', '_').
func (s *scanner) word() (string, error) {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '.' || c == '_' {
			s.pos++
			continue
		}
		break
	}
	if s.pos == start {
		return "", fmt.Errorf("%w: expected a command keyword at %q", network.ErrMalformedInput, s.rest())
	}
	return s.src[start:s.pos], nil
}

func (s *scanner) keyword(k string) error {
	if !strings.HasPrefix(s.src[s.pos:], k) {
		return fmt.Errorf("%w: expected '%s' at %q", network.ErrMalformedInput, k, s.rest())
	}
	s.pos += len(k)
	return nil
}

func (s *scanner) expect(c byte) error {
	if s.pos >= len(s.src) || s.src[s.pos] != c {
		return fmt.Errorf("%w: expected '%c' at %q", network.ErrMalformedInput, c, s.rest())
	}
	s.pos++
	return nil
}

// identifier consumes a mapping name: a lowercase letter followed by
// lowercase letters, digits, or underscores, at most 31 bytes like a
// program identifier.
func (s *scanner) identifier() (string, error) {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c >= 'a' && c <= 'z' || c == '_' || (c >= '0' && c <= '9' && s.pos > start) {
			s.pos++
			continue
		}
		break
	}
	if s.pos == start {
		return "", fmt.Errorf("%w: expected an identifier at %q", network.ErrMalformedInput, s.rest())
	}
	if s.pos-start > 31 {
		return "", fmt.Errorf("%w: identifier %q exceeds 31 bytes", network.ErrMalformedInput, s.src[start:s.pos])
	}
	return s.src[start:s.pos], nil
}

// register consumes "r<N>".
func (s *scanner) register() (uint64, error) {
	if s.pos >= len(s.src) || s.src[s.pos] != 'r' {
		return 0, fmt.Errorf("%w: expected a register at %q", network.ErrMalformedInput, s.rest())
	}
	s.pos++
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return 0, fmt.Errorf("%w: expected a register index at %q", network.ErrMalformedInput, s.rest())
	}
	return strconv.ParseUint(s.src[start:s.pos], 10, 64)
}

// operand consumes a register reference or a decimal field literal.
func (s *scanner) operand() (Operand, error) {
	if s.pos < len(s.src) && s.src[s.pos] == 'r' {
		// Distinguish a register from an identifier-looking token by peeking
		// for a digit after 'r'.
		if s.pos+1 < len(s.src) && s.src[s.pos+1] >= '0' && s.src[s.pos+1] <= '9' {
			idx, err := s.register()
			if err != nil {
				return Operand{}, err
			}
			return Reg(idx), nil
		}
	}
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return Operand{}, fmt.Errorf("%w: expected an operand at %q", network.ErrMalformedInput, s.rest())
	}
	var lit network.Field
	if _, err := lit.SetString(s.src[start:s.pos]); err != nil {
		return Operand{}, fmt.Errorf("%w: invalid literal: %v", network.ErrMalformedInput, err)
	}
	return Lit(lit), nil
}
