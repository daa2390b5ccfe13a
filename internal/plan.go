package internal

import (
	"fmt"
	"strings"
)

// PlannedRow is a spreadsheet row with the verdict the downloader would reach
type PlannedRow struct {
	Row
	Action string `json:"action"`
}

// Plan is what download and upload would do, without running either
type Plan struct {
	Sheet      string       `json:"sheet"`
	Column     string       `json:"column"`
	Rows       []PlannedRow `json:"rows"`
	UploadDir  string       `json:"upload_dir"`
	Jobs       []UploadJob  `json:"jobs"`
	UploadNote string       `json:"upload_note,omitempty"` // explains an empty job list
}

// Plan reads the spreadsheet and scans the upload directory. An unreadable
// spreadsheet is an error; a missing upload directory is only noted.
func (app *App) Plan(sheet Sheet, dir string) (*Plan, error) {
	if dir == "" {
		dir = app.config.DownloadsDir
	}

	rows, err := ReadRows(sheet)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Sheet:     sheet.Path,
		Column:    sheet.Column,
		Rows:      make([]PlannedRow, 0, len(rows)),
		UploadDir: dir,
		Jobs:      []UploadJob{},
	}
	for _, row := range rows {
		plan.Rows = append(plan.Rows, PlannedRow{Row: row, Action: describeRow(row)})
	}

	jobs, err := ListUploadJobs(dir, app.config.MediaExtension)
	switch {
	case err != nil:
		plan.UploadNote = err.Error()
	case len(jobs) == 0:
		plan.UploadNote = fmt.Sprintf("No %s files found in %s", app.config.MediaExtension, dir)
	default:
		plan.Jobs = jobs
	}

	return plan, nil
}

// Downloadable counts the rows that would be passed to yt-dlp
func (p *Plan) Downloadable() int {
	n := 0
	for _, r := range p.Rows {
		if r.Action == "ok" {
			n++
		}
	}
	return n
}

// Markdown renders the plan as two markdown tables
func (p *Plan) Markdown() string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("# Download: %s\n\n", p.Sheet))
	buf.WriteString(fmt.Sprintf("%d of %d rows in column `%s` will be downloaded.\n\n", p.Downloadable(), len(p.Rows), p.Column))
	if len(p.Rows) > 0 {
		buf.WriteString("| Row | Link | Action |\n|---|---|---|\n")
		for _, r := range p.Rows {
			buf.WriteString(fmt.Sprintf("| %d | %s | %s |\n", r.Number, markdownCell(r.Row.String()), markdownCell(r.Action)))
		}
		buf.WriteString("\n")
	}

	buf.WriteString(fmt.Sprintf("# Upload: %s\n\n", p.UploadDir))
	if p.UploadNote != "" {
		buf.WriteString(p.UploadNote + "\n")
		return buf.String()
	}
	buf.WriteString("| # | File | Title |\n|---|---|---|\n")
	for i, job := range p.Jobs {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s |\n", i+1, markdownCell(job.Name), markdownCell(job.Title)))
	}
	return buf.String()
}

// markdownCell escapes pipes so a value cannot break the table
func markdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
