package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
)

// Read returns at most maxLines from the end of the file at path. maxLines
// <= 0 returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

var levelRank = map[string]int{
	"DEBUG":  0,
	"INFO":   1,
	"WARN":   2,
	"ERROR":  3,
	"DPANIC": 4,
	"PANIC":  5,
	"FATAL":  6,
}

// Level extracts the level of a swatch log line in either the console or the
// JSON format. Continuation lines return "".
func Level(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var entry struct {
			Level string `json:"level"`
		}
		if json.Unmarshal([]byte(trimmed), &entry) == nil {
			return strings.ToUpper(entry.Level)
		}
		return ""
	}
	parts := strings.SplitN(trimmed, " | ", 3)
	if len(parts) < 2 {
		return ""
	}
	lvl := strings.ToUpper(strings.TrimSpace(parts[1]))
	if _, ok := levelRank[lvl]; !ok {
		return ""
	}
	return lvl
}

// Filter keeps lines at or above minLevel. Lines without a level (stack
// traces, wrapped output) follow the decision for the line before them. An
// empty or unknown minLevel keeps everything.
func Filter(lines []string, minLevel string) []string {
	floor, ok := levelRank[strings.ToUpper(strings.TrimSpace(minLevel))]
	if !ok {
		return lines
	}
	out := make([]string, 0, len(lines))
	keep := false
	for _, line := range lines {
		if lvl := Level(line); lvl != "" {
			keep = levelRank[lvl] >= floor
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}
