// Command filesearch walks a directory tree and reports every file whose
// contents match a regular expression, using a pool.Pool to search files
// concurrently. It is a thin client of the pool's public API: one task
// per candidate file, each returning its own match count or an error,
// collected through pool.Submit's generic Handle.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"github.com/arjunv/taskforge/pool"
)

type fileMatch struct {
	path    string
	matches int
}

func main() {
	root := flag.String("root", ".", "directory to search")
	pattern := flag.String("pattern", "", "regular expression to match against file contents (required)")
	workers := flag.Int("workers", 0, "worker count (default: GOMAXPROCS)")
	ext := flag.String("ext", "", "only search files with this extension, e.g. .go (default: all files)")
	flag.Parse()

	if *pattern == "" {
		fmt.Fprintln(os.Stderr, "filesearch: -pattern is required")
		os.Exit(2)
	}

	re, err := regexp.Compile(*pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "filesearch: invalid pattern: %v\n", err)
		os.Exit(2)
	}

	candidates, err := collectCandidates(*root, *ext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "filesearch: %v\n", err)
		os.Exit(1)
	}

	opts := []pool.Option{}
	if *workers > 0 {
		opts = append(opts, pool.WithWorkerCount(*workers))
	}
	p := pool.New(opts...)

	bar := progressbar.NewOptions(len(candidates),
		progressbar.OptionSetDescription("Searching"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	handles := make([]*pool.Handle[fileMatch], len(candidates))
	for i, path := range candidates {
		path := path
		handles[i] = pool.Submit(p, func() (fileMatch, error) {
			return searchFile(path, re)
		})
	}

	p.Done()

	results := make([]fileMatch, 0, len(candidates))
	var searchErr error
	for _, h := range handles {
		m, err := h.Get()
		_ = bar.Add(1)
		if err != nil {
			searchErr = err
			continue
		}
		if m.matches > 0 {
			results = append(results, m)
		}
	}
	p.WaitToCompletion()
	_ = p.Close()

	sort.Slice(results, func(i, j int) bool { return results[i].matches > results[j].matches })
	renderResults(results, searchErr)
}

func collectCandidates(root, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext != "" && filepath.Ext(path) != ext {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func searchFile(path string, re *regexp.Regexp) (fileMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileMatch{}, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if re.MatchString(scanner.Text()) {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return fileMatch{}, err
	}
	return fileMatch{path: path, matches: count}, nil
}

func renderResults(results []fileMatch, searchErr error) {
	if len(results) == 0 {
		color.New(color.FgYellow).Println("no matches found")
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("File", "Matches")
		for _, r := range results {
			_ = table.Append(r.path, fmt.Sprintf("%d", r.matches))
		}
		if err := table.Render(); err != nil {
			color.New(color.FgRed).Printf("error rendering results: %v\n", err)
		}
	}

	if searchErr != nil {
		color.New(color.FgRed).Printf("completed with at least one file error: %v\n", searchErr)
	}

	color.New(color.FgGreen).Printf("searched %d matching files at %s\n", len(results), time.Now().Format(time.Kitchen))
}
