package sat

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseOPB parses a pseudo-boolean problem in the OPB format of the PB
// competitions. Lines starting with '*' are comments. An optional "min:"
// line holds the cost function. Every other line is a constraint ending
// with a semicolon, whose operator is ">=", "<=" or "=".
func ParseOPB(r io.Reader) (*Problem, error) {
	var pb Problem
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '*' {
			continue
		}
		if err := pb.opbLine(line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read OPB")
	}
	return &pb, nil
}

func (pb *Problem) opbLine(line string) error {
	body, ok := strings.CutSuffix(line, ";")
	if !ok {
		return errors.Errorf("missing semicolon at the end of %q", line)
	}
	fields := strings.Fields(body)
	if len(fields) > 0 && fields[0] == "min:" {
		lits, weights, err := pb.opbTerms(fields[1:])
		if err != nil {
			return errors.Wrapf(err, "in %q", line)
		}
		pb.SetCostFunc(lits, weights)
		return nil
	}
	if len(fields) < 3 {
		return errors.Errorf("invalid constraint %q", line)
	}
	op, rhs := fields[len(fields)-2], fields[len(fields)-1]
	n, err := strconv.Atoi(rhs)
	if err != nil {
		return errors.Wrapf(err, "invalid right-hand side in %q", line)
	}
	lits, weights, err := pb.opbTerms(fields[:len(fields)-2])
	if err != nil {
		return errors.Wrapf(err, "in %q", line)
	}
	switch op {
	case ">=":
		pb.add(GtEq(lits, weights, n))
	case "<=":
		pb.add(LtEq(lits, weights, n))
	case "=":
		pb.add(GtEq(append([]int(nil), lits...), append([]int(nil), weights...), n))
		pb.add(LtEq(lits, weights, n))
	default:
		return errors.Errorf("invalid operator %q in %q", op, line)
	}
	return nil
}

// opbTerms parses a list of terms "w xi" or "w ~xi". The weight may be
// omitted, meaning 1.
func (pb *Problem) opbTerms(fields []string) (lits, weights []int, err error) {
	for i := 0; i < len(fields); i++ {
		w := 1
		if n, err := strconv.Atoi(fields[i]); err == nil {
			i++
			if i == len(fields) {
				return nil, nil, errors.Errorf("weight %d without a variable", n)
			}
			w = n
		}
		lit, err := pb.opbLit(fields[i])
		if err != nil {
			return nil, nil, err
		}
		lits = append(lits, lit)
		weights = append(weights, w)
	}
	return lits, weights, nil
}

func (pb *Problem) opbLit(s string) (int, error) {
	name, neg := strings.CutPrefix(s, "~")
	digits, ok := strings.CutPrefix(name, "x")
	v, err := strconv.Atoi(digits)
	if !ok || err != nil || v <= 0 {
		return 0, errors.Errorf("invalid variable %q", s)
	}
	if v > pb.NbVars {
		pb.NbVars = v
	}
	if neg {
		return -v, nil
	}
	return v, nil
}
