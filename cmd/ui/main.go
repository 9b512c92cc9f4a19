// Command ui is the Gio client for the lifeos API: today's frogs and
// tadpoles, the inbox with its triage buttons, and reference notes.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"lifeos/internal/config"
	"lifeos/pkg/display"
)

var (
	apiBase = "/"
	theme   *material.Theme
	muted   = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
)

// Pages
const (
	pageToday = iota
	pageInbox
	pageReferences
)

type Task struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	EstMinutes int    `json:"est_minutes"`
}

type Lists struct {
	Date     string `json:"date"`
	Frogs    []Task `json:"frogs"`
	Tadpoles []Task `json:"tadpoles"`
}

// Item is an inbox item or a reference note; both carry the same fields.
type Item struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type Status struct {
	Inbox      int `json:"inbox"`
	OpenTasks  int `json:"open_tasks"`
	References int `json:"references"`
}

// taskRow holds the per-row buttons of the Today page.
type taskRow struct {
	done, snooze widget.Clickable
}

type itemRow struct {
	frog, tadpole, ref, trash widget.Clickable
}

type UI struct {
	win *app.Window

	currentPage int

	// Nav buttons
	navToday      widget.Clickable
	navInbox      widget.Clickable
	navReferences widget.Clickable
	refreshBtn    widget.Clickable

	mu     sync.Mutex
	status Status
	today  Lists
	inbox  []Item
	refs   []Item

	// Today
	todayList widget.List
	frogRows  []taskRow
	tadRows   []taskRow

	// Inbox
	inboxList     widget.List
	itemRows      []itemRow
	captureEditor widget.Editor
	captureBtn    widget.Clickable
	lastCapture   string

	// References
	refList widget.List
}

func main() {
	cfg, err := config.LoadUI()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// The web build is served by the API itself.
	if runtime.GOOS != "js" {
		apiBase = cfg.APIBase
	}

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x2E, G: 0x7D, B: 0x32, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	ui := &UI{win: new(app.Window)}
	ui.todayList.Axis = layout.Vertical
	ui.inboxList.Axis = layout.Vertical
	ui.refList.Axis = layout.Vertical
	ui.captureEditor.SingleLine = true
	ui.captureEditor.Submit = true

	go ui.pollData()
	go ui.watch()

	go func() {
		ui.win.Option(app.Title("lifeos"))
		ui.win.Option(app.Size(unit.Dp(900), unit.Dp(700)))
		if err := ui.run(ui.win); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func (ui *UI) run(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			ui.mu.Lock()
			ui.handleClicks(gtx)
			ui.layout(gtx)
			ui.mu.Unlock()
			e.Frame(gtx.Ops)
		}
	}
}

func (ui *UI) handleClicks(gtx layout.Context) {
	if ui.navToday.Clicked(gtx) {
		ui.currentPage = pageToday
	}
	if ui.navInbox.Clicked(gtx) {
		ui.currentPage = pageInbox
	}
	if ui.navReferences.Clicked(gtx) {
		ui.currentPage = pageReferences
	}
	if ui.refreshBtn.Clicked(gtx) {
		go ui.fetchAll()
	}

	submitted := ui.captureBtn.Clicked(gtx)
	for {
		ev, ok := ui.captureEditor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			submitted = true
		}
	}
	if submitted {
		if txt := strings.TrimSpace(ui.captureEditor.Text()); txt != "" {
			go ui.capture(txt)
			ui.lastCapture = txt
			ui.captureEditor.SetText("")
		}
	}

	for i := range ui.frogRows {
		if i < len(ui.today.Frogs) {
			ui.handleTaskRow(gtx, &ui.frogRows[i], ui.today.Frogs[i].ID)
		}
	}
	for i := range ui.tadRows {
		if i < len(ui.today.Tadpoles) {
			ui.handleTaskRow(gtx, &ui.tadRows[i], ui.today.Tadpoles[i].ID)
		}
	}

	for i := range ui.itemRows {
		if i >= len(ui.inbox) {
			break
		}
		id, row := ui.inbox[i].ID, &ui.itemRows[i]
		if row.frog.Clicked(gtx) {
			go ui.post(fmt.Sprintf("api/inbox/%d/task", id), fmt.Sprintf(`{"kind":"frog","est_minutes":%d}`, 30))
		}
		if row.tadpole.Clicked(gtx) {
			go ui.post(fmt.Sprintf("api/inbox/%d/task", id), fmt.Sprintf(`{"kind":"tadpole","est_minutes":%d}`, 10))
		}
		if row.ref.Clicked(gtx) {
			go ui.post(fmt.Sprintf("api/inbox/%d/reference", id), "")
		}
		if row.trash.Clicked(gtx) {
			go ui.delete(fmt.Sprintf("api/inbox/%d", id))
		}
	}
}

func (ui *UI) handleTaskRow(gtx layout.Context, row *taskRow, id int64) {
	if row.done.Clicked(gtx) {
		go ui.post(fmt.Sprintf("api/tasks/%d/done", id), "")
	}
	if row.snooze.Clicked(gtx) {
		go ui.post(fmt.Sprintf("api/tasks/%d/snooze", id), "")
	}
}

func (ui *UI) layout(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return ui.layoutNav(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				switch ui.currentPage {
				case pageInbox:
					return ui.layoutInbox(gtx)
				case pageReferences:
					return ui.layoutReferences(gtx)
				default:
					return ui.layoutToday(gtx)
				}
			})
		}),
	)
}

func (ui *UI) layoutNav(gtx layout.Context) layout.Dimensions {
	gtx.Constraints.Min.X = gtx.Dp(unit.Dp(160))
	gtx.Constraints.Max.X = gtx.Dp(unit.Dp(160))
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.H6(theme, "lifeos")
				label.Color = theme.Palette.ContrastFg
				return label.Layout(gtx)
			})
		}),
		layout.Rigid(navBtn(theme, &ui.navToday, "Today", ui.currentPage == pageToday)),
		layout.Rigid(navBtn(theme, &ui.navInbox, fmt.Sprintf("Inbox (%d)", ui.status.Inbox), ui.currentPage == pageInbox)),
		layout.Rigid(navBtn(theme, &ui.navReferences, "Reference", ui.currentPage == pageReferences)),
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(navBtn(theme, &ui.refreshBtn, "Refresh", false)),
	)
}

func navBtn(th *material.Theme, btn *widget.Clickable, label string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(2), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th, btn, label)
			if active {
				b.Background = th.Palette.ContrastBg
			} else {
				b.Background = color.NRGBA{A: 0}
			}
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		})
	}
}

func heading(title string) layout.FlexChild {
	return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		return material.H5(theme, title).Layout(gtx)
	})
}

func smallBtn(btn *widget.Clickable, label string, bg color.NRGBA) layout.FlexChild {
	return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Right: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			b := material.Button(theme, btn, label)
			b.TextSize = unit.Sp(12)
			b.Inset = layout.UniformInset(unit.Dp(6))
			if bg.A != 0 {
				b.Background = bg
			}
			return b.Layout(gtx)
		})
	})
}

// grow extends rows so there is one entry per data row. Existing entries
// keep their click state.
func grow[T any](rows []T, n int) []T {
	for len(rows) < n {
		var zero T
		rows = append(rows, zero)
	}
	return rows
}

func (ui *UI) layoutToday(gtx layout.Context) layout.Dimensions {
	ui.frogRows = grow(ui.frogRows, len(ui.today.Frogs))
	ui.tadRows = grow(ui.tadRows, len(ui.today.Tadpoles))

	// One flat list: frog header, frogs, tadpole header, tadpoles.
	nf, nt := len(ui.today.Frogs), len(ui.today.Tadpoles)
	total := 2 + nf + nt

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		heading("Today "+ui.today.Date),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.List(theme, &ui.todayList).Layout(gtx, total, func(gtx layout.Context, i int) layout.Dimensions {
				switch {
				case i == 0:
					return sectionLabel(gtx, fmt.Sprintf("Frogs (%d)", nf))
				case i <= nf:
					return ui.layoutTask(gtx, ui.today.Frogs[i-1], &ui.frogRows[i-1])
				case i == nf+1:
					return sectionLabel(gtx, fmt.Sprintf("Tadpoles (%d)", nt))
				default:
					j := i - nf - 2
					return ui.layoutTask(gtx, ui.today.Tadpoles[j], &ui.tadRows[j])
				}
			})
		}),
	)
}

func sectionLabel(gtx layout.Context, s string) layout.Dimensions {
	return layout.Inset{Top: unit.Dp(12), Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		l := material.Subtitle1(theme, s)
		l.Font.Weight = font.Bold
		return l.Layout(gtx)
	})
}

func (ui *UI) layoutTask(gtx layout.Context, t Task, row *taskRow) layout.Dimensions {
	return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(material.Body1(theme, t.Title).Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						l := material.Caption(theme, fmt.Sprintf("#%d  ~%d min", t.ID, t.EstMinutes))
						l.Color = muted
						return l.Layout(gtx)
					}),
				)
			}),
			smallBtn(&row.done, "Done", color.NRGBA{}),
			smallBtn(&row.snooze, "Snooze", color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}),
		)
	})
}

func (ui *UI) layoutInbox(gtx layout.Context) layout.Dimensions {
	ui.itemRows = grow(ui.itemRows, len(ui.inbox))

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		heading("Inbox"),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return material.Editor(theme, &ui.captureEditor, "Capture...").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Button(theme, &ui.captureBtn, "Add").Layout(gtx)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			note := display.LastCapture(ui.lastCapture)
			if note == "" {
				return layout.Dimensions{}
			}
			return layout.Inset{Top: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				l := material.Caption(theme, note)
				l.Color = muted
				return l.Layout(gtx)
			})
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.List(theme, &ui.inboxList).Layout(gtx, len(ui.inbox), func(gtx layout.Context, i int) layout.Dimensions {
				it, row := ui.inbox[i], &ui.itemRows[i]
				return layout.Inset{Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
						layout.Rigid(material.Body1(theme, it.Text).Layout),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							l := material.Caption(theme, display.ShortTime(it.CreatedAt))
							l.Color = muted
							return l.Layout(gtx)
						}),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							return layout.Flex{}.Layout(gtx,
								smallBtn(&row.frog, "Frog", color.NRGBA{}),
								smallBtn(&row.tadpole, "Tadpole", color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}),
								smallBtn(&row.ref, "Reference", color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}),
								smallBtn(&row.trash, "Trash", color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}),
							)
						}),
					)
				})
			})
		}),
	)
}

func (ui *UI) layoutReferences(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		heading("Reference"),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.List(theme, &ui.refList).Layout(gtx, len(ui.refs), func(gtx layout.Context, i int) layout.Dimensions {
				n := ui.refs[i]
				return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
						layout.Rigid(material.Body1(theme, n.Text).Layout),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							l := material.Caption(theme, display.ShortTime(n.CreatedAt))
							l.Color = muted
							return l.Layout(gtx)
						}),
					)
				})
			})
		}),
	)
}

// Data fetching

func (ui *UI) pollData() {
	ui.fetchAll()
	ticker := time.NewTicker(30 * time.Second)
	for range ticker.C {
		ui.fetchAll()
	}
}

// watch refetches whenever the server reports a change, reconnecting after
// errors. Polling stays on as a fallback.
func (ui *UI) watch() {
	for {
		if err := ui.readStream(); err != nil {
			log.Printf("stream: %v", err)
		}
		time.Sleep(5 * time.Second)
	}
}

func (ui *UI) readStream() error {
	resp, err := http.Get(apiBase + "api/stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET api/stream: %s", resp.Status)
	}
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "data:") {
			ui.fetchAll()
		}
	}
	return sc.Err()
}

func (ui *UI) fetchAll() {
	var (
		st    Status
		today Lists
		items []Item
		refs  []Item
	)
	if err := httpGetJSON(apiBase+"api/status", &st); err != nil {
		log.Printf("fetch status: %v", err)
		return
	}
	if err := httpGetJSON(apiBase+"api/today", &today); err != nil {
		log.Printf("fetch today: %v", err)
		return
	}
	if err := httpGetJSON(apiBase+"api/inbox", &items); err != nil {
		log.Printf("fetch inbox: %v", err)
		return
	}
	if err := httpGetJSON(apiBase+"api/references", &refs); err != nil {
		log.Printf("fetch references: %v", err)
		return
	}

	ui.mu.Lock()
	ui.status, ui.today, ui.inbox, ui.refs = st, today, items, refs
	ui.mu.Unlock()
	ui.win.Invalidate()
}

func (ui *UI) capture(txt string) {
	body, _ := json.Marshal(map[string]string{"text": txt})
	ui.post("api/inbox", string(body))
}

func (ui *UI) post(path, body string) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	resp, err := http.Post(apiBase+path, "application/json", rd)
	if err != nil {
		log.Printf("POST %s: %v", path, err)
		return
	}
	resp.Body.Close()
	ui.fetchAll()
}

func (ui *UI) delete(path string) {
	req, err := http.NewRequest(http.MethodDelete, apiBase+path, nil)
	if err != nil {
		log.Printf("DELETE %s: %v", path, err)
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("DELETE %s: %v", path, err)
		return
	}
	resp.Body.Close()
	ui.fetchAll()
}

func httpGetJSON(url string, v any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
