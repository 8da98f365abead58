// Command generate_index renders README.md into the release download page,
// replacing its Installation section with links to the archives in dist.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// archivePattern matches goreleaser archives: lazyview_VERSION_OS_ARCH.ext
var archivePattern = regexp.MustCompile(`^lazyview_([^_]+(?:-[^_]+)*)_(Darwin|Linux|Windows)_(arm64|x86_64)\.(?:tar\.gz|zip)$`)

var platformNames = map[string]string{
	"Darwin_arm64":   "macOS (Apple Silicon)",
	"Darwin_x86_64":  "macOS (Intel)",
	"Linux_arm64":    "Linux (ARM64)",
	"Linux_x86_64":   "Linux (x86_64)",
	"Windows_arm64":  "Windows (ARM64)",
	"Windows_x86_64": "Windows (x86_64)",
}

type archive struct {
	Platform string
	File     string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dist-dir>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run("README.md", os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(readmePath, distDir string) error {
	readme, err := os.ReadFile(readmePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", readmePath, err)
	}
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", distDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	version, archives := scanArchives(names)

	body := replaceInstallationSection(renderMarkdown(readme), downloadsHTML(version, archives))

	indexPath := filepath.Join(distDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", indexPath, err)
	}
	defer f.Close()
	if err := writePage(f, body); err != nil {
		return fmt.Errorf("write %s: %w", indexPath, err)
	}
	fmt.Fprintf(os.Stderr, "Generated %s\n", indexPath)
	return nil
}

func renderMarkdown(src []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(p.Parse(src), renderer)
}

// scanArchives picks the release archives out of names, one per platform,
// sorted by platform key. The version is taken from the first match.
func scanArchives(names []string) (string, []archive) {
	version := "unknown"
	byPlatform := map[string]string{}
	for _, name := range names {
		m := archivePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if version == "unknown" {
			version = m[1]
		}
		key := m[2] + "_" + m[3]
		if _, ok := byPlatform[key]; !ok {
			byPlatform[key] = name
		}
	}
	keys := make([]string, 0, len(byPlatform))
	for k := range byPlatform {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]archive, 0, len(keys))
	for _, k := range keys {
		out = append(out, archive{Platform: platformNames[k], File: byPlatform[k]})
	}
	return version, out
}

func downloadsHTML(version string, archives []archive) string {
	var sb strings.Builder
	sb.WriteString("  <div class=\"downloads\">\n    <h2>Downloads</h2>\n")
	fmt.Fprintf(&sb, "    <h3>%s</h3>\n    <table class=\"download-table\">\n", version)
	for _, a := range archives {
		fmt.Fprintf(&sb, "      <tr><td class=\"platform-name\">%s</td><td><a href=\"%s\">download</a></td></tr>\n", a.Platform, a.File)
	}
	sb.WriteString("    </table>\n  </div>\n")
	return sb.String()
}

// replaceInstallationSection swaps the README's Installation section for
// the downloads table. The page is returned unchanged when the section or
// the heading after it is missing.
func replaceInstallationSection(page []byte, downloads string) []byte {
	doc := string(page)
	start := strings.Index(doc, `<h2 id="installation">`)
	if start == -1 {
		start = strings.Index(doc, `<h2 id="install">`)
	}
	if start == -1 {
		return page
	}
	const headingLen = len(`<h2 id="install">`)
	next := strings.Index(doc[start+headingLen:], `<h2 id="`)
	if next == -1 {
		return page
	}
	next += start + headingLen

	replacement := `<h2 id="installation">Installation</h2>

` + downloads + `
<p>Extract the archive and move the binary to your PATH:</p>

<pre><code class="language-bash"># macOS / Linux
tar -xzf lazyview_*.tar.gz
sudo mv lazyview /usr/local/bin/

# Windows
# Extract the .zip file and add lazyview.exe to your PATH
</code></pre>

`
	return []byte(doc[:start] + replacement + doc[next:])
}

func writePage(w io.Writer, body []byte) error {
	if _, err := io.WriteString(w, pageHeader); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

const pageHeader = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>lazyview - lazy paginated record browser</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
    h1, h2 { color: #0f766e; }
    code { background: #f1f5f9; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
    pre { background: #1e293b; color: #e2e8f0; padding: 16px; border-radius: 6px; overflow-x: auto; }
    pre code { background: none; color: inherit; padding: 0; }
    .downloads { background: #f0fdfa; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #0f766e; }
    .download-table { width: 100%; border-collapse: collapse; }
    .download-table td { padding: 6px 8px; }
    .platform-name { font-weight: 500; width: 200px; }
  </style>
</head>
<body>
`
