package digest

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brannerchinese/stockscrape/app/database"
	"github.com/brannerchinese/stockscrape/app/headline"
)

//go:embed templates/*.tex
var templateFS embed.FS

// sectionDateLayout is the long form used in section and subsection
// headings, e.g. "Friday, March 01, 2013".
const sectionDateLayout = "Monday, January 02, 2006"

// Renderer assembles the LaTeX digest: a price table followed by one
// news section per symbol, headlines grouped by date, newest date
// first. Headline and source text is stored already escaped; quote
// fields are escaped here.
type Renderer struct {
	headlineRepo database.HeadlineRepository
	quoteRepo    database.QuoteRepository
	templateDir  string
	lookbackDays int
}

// NewRenderer creates a renderer covering the last lookbackDays days.
// If templateDir is non-empty, template files found there shadow the
// embedded ones.
func NewRenderer(headlineRepo database.HeadlineRepository, quoteRepo database.QuoteRepository, templateDir string, lookbackDays int) *Renderer {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	return &Renderer{
		headlineRepo: headlineRepo,
		quoteRepo:    quoteRepo,
		templateDir:  templateDir,
		lookbackDays: lookbackDays,
	}
}

// Render produces the complete LaTeX document for the given symbols.
func (r *Renderer) Render(ctx context.Context, symbols []string, today time.Time) (string, error) {
	start, err := r.template("file_start.tex")
	if err != nil {
		return "", err
	}
	end, err := r.template("file_end.tex")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(start)

	if err := r.renderPriceTable(ctx, &b, symbols); err != nil {
		return "", err
	}

	for _, symbol := range symbols {
		if err := r.renderNewsSection(ctx, &b, symbol, today); err != nil {
			return "", err
		}
	}

	b.WriteString("\n")
	b.WriteString(end)
	return b.String(), nil
}

// RenderToFile writes the digest to path.
func (r *Renderer) RenderToFile(ctx context.Context, symbols []string, today time.Time, path string) error {
	contents, err := r.Render(ctx, symbols, today)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}
	return nil
}

func (r *Renderer) renderPriceTable(ctx context.Context, b *strings.Builder, symbols []string) error {
	quotes, err := r.quoteRepo.GetQuotes(ctx, symbols)
	if err != nil {
		return fmt.Errorf("failed to load quotes: %w", err)
	}

	for _, q := range quotes {
		row := []string{
			`\head{` + q.Ticker + `}`,
			q.TradeDate,
			q.LastTrade,
			q.Change,
			headline.EscapeText(q.PctChange),
			q.Dividend,
			q.PayDate,
			q.ExDivDate,
		}
		b.WriteString(strings.Join(row, " & ") + `\\ \hline` + "\n")
	}

	b.WriteString("\\end{tabular}\n\\end{center}\n\\end{table}%\n\\clearpage\n")
	return nil
}

func (r *Renderer) renderNewsSection(ctx context.Context, b *strings.Builder, symbol string, today time.Time) error {
	hasAny, err := r.headlineRepo.HasHeadlines(ctx, symbol)
	if err != nil {
		return fmt.Errorf("failed to check headlines for %s: %w", symbol, err)
	}
	if !hasAny {
		fmt.Fprintf(b, "\n\n\\section*{%s --- No news found.}\n", symbol)
		return nil
	}

	from := today.AddDate(0, 0, -(r.lookbackDays - 1))
	stored, err := r.headlineRepo.GetByDateRange(ctx, symbol, from, today)
	if err != nil {
		return fmt.Errorf("failed to load headlines for %s: %w", symbol, err)
	}

	if len(stored) == 0 {
		// History exists but nothing inside the window.
		fmt.Fprintf(b, "\n\n\\section*{%s --- No news since %s.}\n", symbol, from.Format(sectionDateLayout))
		return nil
	}

	fmt.Fprintf(b, "\n\n\\section*{%s}\n", symbol)

	// Rows arrive newest date first; emit one subsection per date.
	currentDate := ""
	for _, h := range stored {
		if h.Date != currentDate {
			if currentDate != "" {
				b.WriteString("\n\\end{itemize}")
			}
			date, err := time.Parse(database.DateLayout, h.Date)
			if err != nil {
				return fmt.Errorf("failed to parse stored date %q: %w", h.Date, err)
			}
			fmt.Fprintf(b, "\n\\subsection*{%s}\n", date.Format(sectionDateLayout))
			b.WriteString("\\begin{itemize}")
			currentDate = h.Date
		}
		fmt.Fprintf(b, "\n\\item\\ \\href{%s}{%s} (%s)", h.URL, h.Headline, h.Source)
	}
	b.WriteString("\n\\end{itemize}\n")

	return nil
}

// template returns the named template, preferring the override
// directory over the embedded copy.
func (r *Renderer) template(name string) (string, error) {
	if r.templateDir != "" {
		path := filepath.Join(r.templateDir, name)
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read template %s: %w", path, err)
		}
	}

	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded template %s: %w", name, err)
	}
	return string(data), nil
}
