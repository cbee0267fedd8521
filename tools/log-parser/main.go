
// sysbox-scrub log parser: splits a log into one file per trace session.

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

var appFs = afero.NewOsFs()

// Color sequences emitted by logrus' text formatter around keys and levels.
var ansiRe = regexp.MustCompile("\x1b\\[[0-9;]*m")

var sessionRe = regexp.MustCompile(`session=([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)

// parseSessions maps each session id found in infile to the lines logged
// for it, in file order and with color sequences removed.
func parseSessions(infile string) (map[string][]string, error) {

	file, err := appFs.Open(infile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sessions := make(map[string][]string)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := ansiRe.ReplaceAllString(scanner.Text(), "")

		m := sessionRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		sessions[m[1]] = append(sessions[m[1]], line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file %s: %v", infile, err)
	}

	return sessions, nil
}

func sessionDumper(outdir, id string, lines []string, wg *sync.WaitGroup, errch chan error) {

	defer wg.Done()

	outfile := filepath.Join(outdir, fmt.Sprintf("session_%s.log", id))
	outf, err := appFs.Create(outfile)
	if err != nil {
		errch <- err
		return
	}
	defer outf.Close()

	w := bufio.NewWriter(outf)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			errch <- fmt.Errorf("failed to write to file %s: %v", outfile, err)
			return
		}
	}

	if err := w.Flush(); err != nil {
		errch <- fmt.Errorf("failed to write to file %s: %v", outfile, err)
	}
}

// dumpSessions writes every session's lines to its own file under outdir.
func dumpSessions(outdir string, sessions map[string][]string) error {
	var wg sync.WaitGroup

	errch := make(chan error, len(sessions))

	for id, lines := range sessions {
		wg.Add(1)
		go sessionDumper(outdir, id, lines, &wg, errch)
	}

	wg.Wait()

	select {
	case err := <-errch:
		return err
	default:
	}

	return nil
}

func usage() {
	fmt.Printf("%s <filename> [output-dir]\n", os.Args[0])
}

func main() {

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	filename := os.Args[1]

	outdir := "."
	if len(os.Args) > 2 {
		outdir = os.Args[2]
	}

	sessions, err := parseSessions(filename)
	if err != nil {
		fmt.Printf("Failed to parse file %s: %v\n", filename, err)
		os.Exit(1)
	}

	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Printf("session %s: %d lines\n", id, len(sessions[id]))
	}

	if err := dumpSessions(outdir, sessions); err != nil {
		fmt.Printf("Failed to dump sessions: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done.\n")
}
