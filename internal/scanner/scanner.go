// package scanner turns a folder of film files into search candidates.
//
// Only the top level of the folder is read. With a pattern, capture group 1 of each matching
// file name is the candidate; without one, a title and year are recovered from release-style names.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbsync/internal/shared"
)

var (
	yearToken    = regexp.MustCompile(`^(19|20)\d{2}$`)
	separators   = regexp.MustCompile(`[._\s]+`)
	bracketsOnly = regexp.MustCompile(`[\[\](){}]`)
)

// releaseTags end a title when no year is present.
var releaseTags = map[string]struct{}{
	"480p": {}, "576p": {}, "720p": {}, "1080p": {}, "1080i": {}, "2160p": {}, "4k": {}, "uhd": {},
	"bluray": {}, "bdrip": {}, "brrip": {}, "dvdrip": {}, "webrip": {}, "web": {}, "webdl": {}, "web-dl": {},
	"hdtv": {}, "hdrip": {}, "remux": {}, "x264": {}, "x265": {}, "h264": {}, "h265": {}, "hevc": {},
	"xvid": {}, "proper": {}, "repack": {}, "extended": {}, "unrated": {}, "remastered": {},
}

// Scanner lists candidate names from a directory.
type Scanner struct {
	dir     string
	pattern *regexp.Regexp
	exts    map[string]struct{}
	logger  *log.Logger
}

// New creates a Scanner for dir. An empty pattern selects the title and year heuristic.
// Extensions are matched case-insensitively; an empty list accepts every file.
func New(dir, pattern string, exts []string, logger *log.Logger) (*Scanner, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: folder", shared.ErrMissingArgument)
	}

	s := &Scanner{dir: dir, exts: make(map[string]struct{}, len(exts)), logger: logger}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", shared.ErrInvalidArgument, pattern, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: pattern %q needs a capture group", shared.ErrInvalidArgument, pattern)
		}
		s.pattern = re
	}

	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.exts[ext] = struct{}{}
	}

	if s.logger == nil {
		s.logger = log.New(os.Stderr)
	}
	return s, nil
}

// Dir returns the scanned folder.
func (s *Scanner) Dir() string {
	return s.dir
}

// Candidates returns one name per matching file in directory order.
// Duplicates are kept; the resolver looks each distinct name up once.
func (s *Scanner) Candidates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrUnreadableDir, s.dir, err)
	}

	candidates := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !s.isFile(entry) {
			continue
		}
		if len(s.exts) > 0 {
			if _, ok := s.exts[strings.ToLower(filepath.Ext(name))]; !ok {
				continue
			}
		}

		candidate, ok := s.Extract(name)
		if !ok {
			s.logger.Debug("skipping file", "file", name)
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func (s *Scanner) isFile(entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// Extract derives the candidate name for one file name.
func (s *Scanner) Extract(fileName string) (string, bool) {
	if s.pattern != nil {
		m := s.pattern.FindStringSubmatch(fileName)
		if len(m) < 2 {
			return "", false
		}
		name := strings.TrimSpace(m[1])
		return name, name != ""
	}
	return TitleAndYear(fileName)
}

// TitleAndYear recovers "Title Year" from a release-style file name.
//
//	The.Matrix.1999.1080p.BluRay.mkv -> The Matrix 1999
//	Heat (1995).mp4                  -> Heat 1995
//	Alien_Directors_Cut.avi          -> Alien Directors Cut
func TitleAndYear(fileName string) (string, bool) {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	base = bracketsOnly.ReplaceAllString(base, " ")
	tokens := strings.Fields(separators.ReplaceAllString(base, " "))

	out := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		// a leading year is a title, e.g. "1917" or "2001"
		if i > 0 && yearToken.MatchString(tok) {
			out = append(out, tok)
			break
		}
		if _, ok := releaseTags[strings.ToLower(tok)]; ok && i > 0 {
			break
		}
		out = append(out, tok)
	}

	name := strings.Join(out, " ")
	return name, name != ""
}
