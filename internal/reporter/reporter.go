package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/ui"
)

// Reporter renders a solved schedule. Rounding happens here only;
// the schedule keeps full precision.
type Reporter struct {
	Graph     *graph.TaskGraph
	Schedule  *cpm.Schedule
	Precision int
}

// New creates a new Reporter.
func New(g *graph.TaskGraph, sched *cpm.Schedule, precision int) *Reporter {
	return &Reporter{
		Graph:     g,
		Schedule:  sched,
		Precision: precision,
	}
}

func (r *Reporter) num(v float64) string {
	return strconv.FormatFloat(v, 'f', r.Precision, 64)
}

// PrintTable writes the per-task schedule, the minimum project duration and
// the critical path.
func (r *Reporter) PrintTable(w io.Writer) {
	ui.PrintBanner(w, "Critical Path Method")
	fmt.Fprintln(w, ui.Dim("ES = Earliest Start; EF = Earliest Finish; LS = Latest Start; LF = Latest Finish"))
	fmt.Fprintln(w)

	header := []string{"TASK", "PRE", "DUR", "ES", "EF", "LS", "LF", "SLACK"}
	rows := make([][]string, 0, len(r.Schedule.TopoOrder))

	for _, id := range r.Schedule.TopoOrder {
		ts := r.Schedule.Tasks[id]
		pre := strings.Join(r.Graph.Predecessors(id), ",")
		if pre == "" {
			pre = "-"
		}

		rows = append(rows, []string{
			id, pre,
			r.num(ts.Duration),
			r.num(ts.ES), r.num(ts.EF),
			r.num(ts.LS), r.num(ts.LF),
			r.num(ts.Slack),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if n := len([]rune(c)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	fmt.Fprint(w, "   ")
	for i, h := range header {
		fmt.Fprintf(w, "%s  ", ui.Bold(pad(h, widths[i], i >= 2)))
	}
	fmt.Fprintln(w)

	for ri, row := range rows {
		ts := r.Schedule.Tasks[r.Schedule.TopoOrder[ri]]

		fmt.Fprintf(w, " %s ", ui.CriticalMark(ts.IsCritical))
		for i, c := range row {
			cellText := pad(c, widths[i], i >= 2)
			switch i {
			case 0:
				cellText = ui.TaskID(cellText, ts.IsCritical)
			case 1:
				cellText = ui.Dim(cellText)
			case len(row) - 1:
				cellText = ui.Slack(cellText, ts.IsCritical)
			}
			fmt.Fprintf(w, "%s  ", cellText)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Minimum project duration: %s\n", ui.Bold(r.num(r.Schedule.ProjectDuration)))
	r.PrintPath(w)
}

// PrintPath writes every critical chain, one per line.
func (r *Reporter) PrintPath(w io.Writer) {
	paths := r.Schedule.CriticalPaths
	if len(paths) == 1 {
		fmt.Fprintf(w, "⚡ Critical path: %s\n", ui.BoldYellow(strings.Join(paths[0], " → ")))
	} else {
		fmt.Fprintf(w, "⚡ Critical paths (%d):\n", len(paths))
		for _, path := range paths {
			fmt.Fprintf(w, "   %s\n", ui.BoldYellow(strings.Join(path, " → ")))
		}
	}

	if r.Schedule.PathsTruncated {
		fmt.Fprintf(w, "%s\n", ui.Yellow(fmt.Sprintf(
			"   (more chains exist; %d critical tasks in total: %s)",
			len(r.Schedule.CriticalTasks), strings.Join(r.Schedule.CriticalTasks, ", "))))
	}
}

// PrintWaves writes tasks grouped by earliest start with their outgoing edges.
func (r *Reporter) PrintWaves(w io.Writer) {
	ui.PrintBanner(w, "Task Dependency Graph")
	fmt.Fprintln(w)

	for _, wave := range r.Schedule.Waves {
		fmt.Fprintf(w, "%s 🌊 Wave %d at %s %s\n",
			ui.Cyan("──"), wave.Index+1, r.num(wave.Start), ui.Cyan("──────────────────────────────"))
		for _, id := range wave.TaskIDs {
			ts := r.Schedule.Tasks[id]
			fmt.Fprintf(w, "  %s [%s] %s\n",
				ui.CriticalMark(ts.IsCritical), ui.TaskID(id, ts.IsCritical),
				ui.Dim(fmt.Sprintf("dur %s, slack %s", r.num(ts.Duration), r.num(ts.Slack))))

			for _, succ := range r.Graph.Successors(id) {
				fmt.Fprintf(w, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(succ))
			}
		}
		fmt.Fprintln(w)
	}
}

// PrintDOT writes the graph in Graphviz format with critical chains in red.
func (r *Reporter) PrintDOT(w io.Writer) {
	fmt.Fprintln(w, "digraph critpath {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, id := range r.Schedule.TopoOrder {
		ts := r.Schedule.Tasks[id]
		label := fmt.Sprintf("%s\\nES %s  EF %s\\nLS %s  LF %s",
			escapeDOT(id), r.num(ts.ES), r.num(ts.EF), r.num(ts.LS), r.num(ts.LF))
		attrs := fmt.Sprintf(`label="%s"`, label)
		if ts.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  %q [%s];\n", id, attrs)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  { rank=source; %s }\n", quoteAll(r.Graph.Roots()))
	fmt.Fprintf(w, "  { rank=sink; %s }\n", quoteAll(r.Graph.Leaves()))
	fmt.Fprintln(w)

	for _, from := range r.Schedule.TopoOrder {
		for _, to := range r.Graph.Successors(from) {
			style := ""
			if r.Schedule.CriticalEdge(from, to) {
				style = ` [color=red, penwidth=2]`
			}
			fmt.Fprintf(w, "  %q -> %q%s;\n", from, to, style)
		}
	}

	fmt.Fprintln(w, "}")
}

// PrintJSON writes the schedule document as indented JSON.
func (r *Reporter) PrintJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r.Document(), "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintDocuments writes several schedule documents as one indented JSON array.
func PrintDocuments(w io.Writer, docs []*Document) error {
	if docs == nil {
		docs = []*Document{}
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

func pad(s string, width int, right bool) string {
	gap := width - len([]rune(s))
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func quoteAll(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id) + ";"
	}

	return strings.Join(quoted, " ")
}

func escapeDOT(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
