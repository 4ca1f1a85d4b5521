package latex

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Main-file tie breakers when several .tex files declare a documentclass.
var preferredMainFileNames = []string{"main.tex", "ms.tex"}

var (
	inputPattern = regexp.MustCompile(`\\(?:input|include)\{([^\n]*?)\}`)
	bibPattern   = regexp.MustCompile(`\\bibliography\{([^\n]*?)\}`)
)

// ExtractTarGz unpacks a gzipped tarball into destinationPath. Entries that
// would escape the destination directory are rejected.
func ExtractTarGz(source []byte, destinationPath string) error {
	gz, err := gzip.NewReader(bytes.NewReader(source))
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		target := filepath.Join(destinationPath, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(destinationPath)+string(os.PathSeparator)) {
			return fmt.Errorf("tar entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %q: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create dir for %q: %w", target, err)
			}
			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create file %q: %w", target, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("write file %q: %w", target, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close file %q: %w", target, err)
			}
		}
	}
}

// FindMainTexFile locates the root .tex file of an extracted project: the
// unique file containing \documentclass. With several candidates, main.tex
// or ms.tex wins if exactly one of them is present.
func FindMainTexFile(sourcePath string) (string, error) {
	var candidates []string
	err := filepath.WalkDir(sourcePath, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".tex") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		if strings.Contains(string(data), `\documentclass`) {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk %q: %w", sourcePath, err)
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no main .tex file found in %q", sourcePath)
	case 1:
		return candidates[0], nil
	}

	var preferred []string
	for _, p := range candidates {
		for _, name := range preferredMainFileNames {
			if filepath.Base(p) == name {
				preferred = append(preferred, p)
			}
		}
	}
	if len(preferred) == 1 {
		return preferred[0], nil
	}
	return "", fmt.Errorf("multiple competing main .tex files: %v", candidates)
}

// InlineOptions controls InlineTexFiles.
type InlineOptions struct {
	MaxDepth       int // recursion limit, defaults to 10
	RemoveComments bool
	InlineCommands bool
	Logger         *zap.Logger
}

// InlineTexFiles reads mainFilePath and recursively replaces \input,
// \include, and \bibliography commands with the content of the referenced
// files. Missing included files are logged and replaced with nothing; a
// \bibliography with no resolvable .bbl or .bib file is an error.
func InlineTexFiles(mainFilePath string, opts InlineOptions) (string, error) {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = 10
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return inlineTexFiles(mainFilePath, mainFilePath, opts.MaxDepth, opts)
}

func inlineTexFiles(mainFilePath, pathToRead string, depth int, opts InlineOptions) (string, error) {
	if depth <= 0 {
		opts.Logger.Warn("reached max recursion depth", zap.String("main_file", mainFilePath))
		return "", nil
	}

	baseDir := filepath.Dir(mainFilePath)
	readDir := filepath.Dir(pathToRead)

	data, err := os.ReadFile(pathToRead)
	if err != nil {
		opts.Logger.Warn("included file not found", zap.String("path", pathToRead), zap.Error(err))
		data = nil
	}
	content := string(data)

	content, err = replaceAllSubmatch(inputPattern, content, func(relativePath string) (string, error) {
		if !strings.HasSuffix(relativePath, ".tex") {
			relativePath += ".tex"
		}
		included := filepath.Clean(filepath.Join(baseDir, relativePath))
		return inlineTexFiles(mainFilePath, included, depth-1, opts)
	})
	if err != nil {
		return "", err
	}

	content, err = replaceAllSubmatch(bibPattern, content, func(bibName string) (string, error) {
		path, err := resolveBibliography(readDir, bibName)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read bibliography %q: %w", path, err)
		}
		return string(data), nil
	})
	if err != nil {
		return "", err
	}

	if opts.RemoveComments {
		content = removeComments(content)
	}
	if opts.InlineCommands {
		content = InlineCustomCommands(content)
	}
	return content, nil
}

// resolveBibliography finds the file backing a \bibliography{name} command:
// name.bbl, then name.bib, then any .bbl in the directory, then any .bib.
func resolveBibliography(dir, bibName string) (string, error) {
	bbl := filepath.Clean(filepath.Join(dir, bibName+".bbl"))
	if _, err := os.Stat(bbl); err == nil {
		return bbl, nil
	}
	bib := filepath.Clean(filepath.Join(dir, bibName+".bib"))
	if _, err := os.Stat(bib); err == nil {
		return bib, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, ext := range []string{".bbl", ".bib"} {
		for _, name := range names {
			if strings.HasSuffix(name, ext) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	return "", fmt.Errorf("no .bbl or .bib files found in %q", dir)
}

// replaceAllSubmatch substitutes each match of re in s with the result of
// calling replace on its first capture group, propagating errors.
func replaceAllSubmatch(re *regexp.Regexp, s string, replace func(string) (string, error)) (string, error) {
	var out strings.Builder
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		out.WriteString(s[last:loc[0]])
		replacement, err := replace(s[loc[2]:loc[3]])
		if err != nil {
			return "", err
		}
		out.WriteString(replacement)
		last = loc[1]
	}
	out.WriteString(s[last:])
	return out.String(), nil
}

// removeComments strips LaTeX comments: lines consisting only of a comment
// disappear entirely, and inline comments are truncated at the first
// unescaped percent sign.
func removeComments(s string) string {
	var out strings.Builder
	for _, line := range strings.SplitAfter(s, "\n") {
		trimmed := strings.TrimLeft(line, " \t\r")
		if strings.HasPrefix(trimmed, "%") {
			continue
		}
		out.WriteString(stripInlineComment(line))
	}
	return out.String()
}

func stripInlineComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '%' && (i == 0 || line[i-1] != '\\') {
			if strings.HasSuffix(line, "\n") {
				return line[:i] + "\n"
			}
			return line[:i]
		}
	}
	return line
}
