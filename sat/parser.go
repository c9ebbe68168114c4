package sat

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/crillab/gophercp/search"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// readInt reads an int from r.
// 'b' is the last read byte. It can be a space, a '-' or a digit.
// The int can be negated.
// All spaces before the int value are ignored.
// Can return EOF.
func readInt(b *byte, r *bufio.Reader) (res int, err error) {
	for err == nil && isSpace(*b) {
		*b, err = r.ReadByte()
	}
	if err == io.EOF {
		return res, io.EOF
	}
	if err != nil {
		return res, errors.Wrap(err, "could not read digit")
	}
	neg := 1
	if *b == '-' {
		neg = -1
		*b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "cannot read int")
		}
	}
	for err == nil {
		if *b < '0' || *b > '9' {
			return 0, errors.Errorf("cannot read int: %q is not a digit", *b)
		}
		res = 10*res + int(*b-'0')
		*b, err = r.ReadByte()
		if isSpace(*b) {
			break
		}
	}
	res *= neg
	return res, err
}

func parseHeader(r *bufio.Reader) (nbVars, nbClauses int, err error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return 0, 0, errors.Wrap(err, "cannot read header")
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, errors.Errorf("invalid syntax %q in header", line)
	}
	nbVars, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Errorf("nbvars not an int : %q", fields[1])
	}
	nbClauses, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, errors.Errorf("nbClauses not an int : %q", fields[2])
	}
	return nbVars, nbClauses, nil
}

// ParseCNF parses a CNF file and returns the corresponding Problem.
func ParseCNF(f io.Reader) (*Problem, error) {
	r := bufio.NewReader(f)
	var (
		nbClauses int
		pb        Problem
	)
	b, err := r.ReadByte()
	for err == nil {
		if b == 'c' { // Ignore comment
			b, err = r.ReadByte()
			for err == nil && b != '\n' {
				b, err = r.ReadByte()
			}
		} else if b == 'p' { // Parse header
			pb.NbVars, nbClauses, err = parseHeader(r)
			if err != nil {
				return nil, errors.Wrap(err, "cannot parse CNF header")
			}
			pb.Clauses = make([][]int, 0, nbClauses)
		} else {
			lits := make([]int, 0, 3) // Make room for some lits to improve performance
			for {
				val, err := readInt(&b, r)
				if err == io.EOF {
					if len(lits) != 0 { // This is not a trailing space at the end...
						return nil, errors.New("unfinished clause while EOF found")
					}
					break // When there are only several useless spaces at the end of the file, that is ok
				}
				if err != nil {
					return nil, errors.Wrap(err, "cannot parse clause")
				}
				if val == 0 {
					if len(lits) == 0 {
						pb.Status = search.Unsat
					} else {
						pb.add(PropClause(lits...))
					}
					break
				}
				if val > pb.NbVars || -val > pb.NbVars {
					return nil, errors.Errorf("invalid literal %d for problem with %d vars only", val, pb.NbVars)
				}
				lits = append(lits, val)
			}
		}
		b, err = r.ReadByte()
	}
	if err != io.EOF {
		return nil, err
	}
	return &pb, nil
}

// ParseWCNF parses a [partial][weighted] MAXSAT file in the WCNF format.
// Each soft clause gets a new relax literal; the returned problem minimizes
// the weighted sum of the relax literals. Relax vars are numbered after
// the NbOrig vars of the file.
func ParseWCNF(f io.Reader) (*Problem, error) {
	scanner := bufio.NewScanner(f)
	var (
		nbVars    int
		topWeight int // weight of hard clauses
		clauses   [][]int
		weights   []int
		relaxLits []int
		relaxLit  int // index of current relax lit
	)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] == 'p' {
			fields := strings.Fields(line)
			if len(fields) < 4 || fields[1] != "wcnf" {
				return nil, errors.Errorf("invalid syntax %q in WCNF file", line)
			}
			var err error
			nbVars, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Errorf("nbvars not an int: %q", fields[2])
			}
			nbClauses, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, errors.Errorf("nbClauses not an int: %q", fields[3])
			}
			relaxLit = nbVars + 1
			clauses = make([][]int, 0, nbClauses)
			weights = make([]int, 0, nbClauses)
			if len(fields) == 5 {
				topWeight, err = strconv.Atoi(fields[4])
				if err != nil {
					return nil, errors.Errorf("top weight not an int: %q", fields[4])
				}
			}
		} else if line[0] != 'c' { // Not a header, not a comment : a clause
			if relaxLit == 0 {
				return nil, errors.Errorf("clause %q found before header", line)
			}
			clause, weight, err := parseWCNFClause(line, topWeight, relaxLit)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
			if topWeight == 0 || weight < topWeight {
				weights = append(weights, weight)
				relaxLits = append(relaxLits, relaxLit)
				relaxLit++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not parse WCNF")
	}
	pb := ParseSlice(clauses)
	pb.SetCostFunc(relaxLits, weights)
	if pb.NbVars < relaxLit-1 {
		pb.NbVars = relaxLit - 1
	}
	pb.NbOrig = nbVars
	return pb, nil
}

// Parses a WCNF line containing a clause and returns the clause with a relaxing literal, and its weight.
func parseWCNFClause(line string, topWeight, relaxLit int) (lits []int, weight int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[len(fields)-1] != "0" {
		return nil, 0, errors.Errorf("invalid WCNF clause %q", line)
	}
	lits = make([]int, len(fields)-1)
	for i, field := range fields { // Last field is clause terminator 0
		val, err := strconv.Atoi(field)
		if err != nil {
			return nil, 0, errors.Errorf("invalid integer %q in WCNF clause %q", field, line)
		}
		if i == 0 {
			weight = val
		} else {
			lits[i-1] = val
		}
	}
	if topWeight == 0 || weight < topWeight {
		lits[len(lits)-1] = relaxLit
	} else {
		lits = lits[:len(lits)-1]
	}
	return lits, weight, nil
}
