package main

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/google/safeopen"

	"github.com/benz9527/xtree/lib/infra"
)

// readSeed parses one integer per line, the blank lines and the lines
// starting with '#' are skipped.
func readSeed(r io.Reader) ([]int, error) {
	res := make([]int, 0, 64)
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		res = append(res, v)
	}
	return res, scanner.Err()
}

// loadSeed reads the seed file, which must not escape from the dir.
func loadSeed(dir, filename string) ([]int, error) {
	if dir == "" || filename == "" {
		return nil, nil
	}
	f, err := safeopen.OpenBeneath(dir, filename)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[xtree] open seed file")
	}
	defer func() {
		_ = f.Close()
	}()
	vals, err := readSeed(f)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[xtree] parse seed file "+filename)
	}
	return vals, nil
}

func writeDump(w io.Writer, vals iter.Seq[int]) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for v := range vals {
		if _, err := bw.WriteString(strconv.Itoa(v)); err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// dumpSet truncates the dump file beneath the dir and writes the values in
// the iteration order.
func dumpSet(dir, filename string, vals iter.Seq[int]) (int, error) {
	if dir == "" || filename == "" {
		return 0, nil
	}
	f, err := safeopen.OpenFileBeneath(dir, filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, infra.WrapErrorStackWithMessage(err, "[xtree] open dump file")
	}
	n, err := writeDump(f, vals)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, infra.WrapErrorStackWithMessage(err, "[xtree] write dump file "+filename)
}
