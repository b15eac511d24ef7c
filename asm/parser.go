// Package asm implements the minimal assembly parser described in
// spec.md §4.7: one statement per line, ';' line comments, trailing
// "label:" declarations, comma- or whitespace-separated operands, and
// "r<N>"/"x<N>" register tokens. It is an external collaborator of the
// engine — nothing in package machine depends on it.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/goleveldb/leveldb/errors"

	"github.com/ahead-sim/revsim/isa"
)

// ErrParse is the sentinel wrapped by every parse failure: unknown
// mnemonics, malformed operands, duplicate labels, or an empty label.
var ErrParse = errors.New("asm: parse error")

// Parser is a minimal two-pass assembler: first pass resolves label
// positions, second pass builds instructions.
type Parser struct {
	Labels map[string]int
}

// NewParser returns a parser with an empty label map.
func NewParser() *Parser {
	return &Parser{Labels: make(map[string]int)}
}

// Parse parses source into a program. Re-using a Parser across multiple
// Parse calls accumulates labels, matching the original prototype's
// behavior (duplicate-label detection spans calls); construct a fresh
// Parser per source file to avoid that.
func (p *Parser) Parse(source string) ([]isa.Instruction, error) {
	lines := strings.Split(strings.TrimSpace(source), "\n")

	var cleaned []string
	pc := 0
	for _, raw := range lines {
		line := raw
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
			if name == "" {
				return nil, wrapf("empty label in line: %q", raw)
			}
			if _, dup := p.Labels[name]; dup {
				return nil, wrapf("duplicate label: %s", name)
			}
			p.Labels[name] = pc
			continue
		}

		cleaned = append(cleaned, line)
		pc++
	}

	program := make([]isa.Instruction, 0, len(cleaned))
	for _, line := range cleaned {
		instr, err := p.parseLine(line)
		if err != nil {
			return nil, err
		}
		program = append(program, instr)
	}
	return program, nil
}

func (p *Parser) parseLine(line string) (isa.Instruction, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return isa.Instruction{}, wrapf("empty instruction line")
	}

	mnemonic := strings.ToUpper(fields[0])
	op, ok := isa.ParseOpCode(mnemonic)
	if !ok {
		return isa.Instruction{}, wrapf("unknown opcode in line: %q", line)
	}
	args := fields[1:]

	switch op {
	case isa.BEQ:
		if len(args) != 3 {
			return isa.Instruction{}, wrapf("BEQ requires 3 operands in line: %q", line)
		}
		rs1, err := p.parseReg(args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		rs2, err := p.parseReg(args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		return isa.NewBEQ(rs1, rs2, args[2]), nil

	case isa.STORE:
		if len(args) < 2 {
			return isa.Instruction{}, wrapf("STORE requires at least 2 operands in line: %q", line)
		}
		rs1, err := p.parseReg(args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		rs2, err := p.parseReg(args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		var offset *int64
		if len(args) > 2 {
			v, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return isa.Instruction{}, wrapf("malformed STORE offset %q in line: %q", args[2], line)
			}
			offset = &v
		}
		return isa.NewSTORE(rs1, rs2, offset), nil

	case isa.LOAD:
		if len(args) < 2 {
			return isa.Instruction{}, wrapf("LOAD requires at least 2 operands in line: %q", line)
		}
		rd, err := p.parseReg(args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		rs1, err := p.parseReg(args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		var offset *int64
		if len(args) > 2 {
			v, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return isa.Instruction{}, wrapf("malformed LOAD offset %q in line: %q", args[2], line)
			}
			offset = &v
		}
		return isa.NewLOAD(rd, rs1, offset), nil

	case isa.HALT:
		return isa.NewHALT(), nil

	default: // RXOR, RADD, RSWAP, ADD, SUB
		return p.parseRegRegOrImm(op, args, line)
	}
}

// parseRegRegOrImm handles RXOR/RADD/RSWAP (rd, rs1) and ADD/SUB (rd,
// rs1, rs2-or-imm), matching the original prototype's generic fallback
// branch.
func (p *Parser) parseRegRegOrImm(op isa.OpCode, args []string, line string) (isa.Instruction, error) {
	var rd, rs1 *int
	if len(args) > 0 {
		v, err := p.parseReg(args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		rd = &v
	}
	if len(args) > 1 {
		v, err := p.parseReg(args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		rs1 = &v
	}

	instr := isa.Instruction{Op: op, Rd: rd, Rs1: rs1}

	if len(args) > 2 {
		tail := args[2]
		switch {
		case isRegisterToken(tail):
			rs2, err := p.parseReg(tail)
			if err != nil {
				return isa.Instruction{}, err
			}
			instr.Rs2 = &rs2
		default:
			v, err := strconv.ParseInt(tail, 10, 64)
			if err != nil {
				return isa.Instruction{}, wrapf("malformed operand %q in line: %q", tail, line)
			}
			instr.Imm = &v
		}
	}

	if rd == nil || rs1 == nil {
		return isa.Instruction{}, wrapf("%s requires at least 2 operands in line: %q", op, line)
	}
	return instr, nil
}

func isRegisterToken(tok string) bool {
	lower := strings.ToLower(tok)
	return strings.HasPrefix(lower, "r") || strings.HasPrefix(lower, "x")
}

func (p *Parser) parseReg(token string) (int, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if strings.HasPrefix(t, "r") || strings.HasPrefix(t, "x") {
		t = t[1:]
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, wrapf("malformed register operand %q", token)
	}
	return n, nil
}

func wrapf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrParse}, args...)...)
}
