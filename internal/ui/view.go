package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/odlove/tealeaf/internal/session"
	"github.com/odlove/tealeaf/internal/store"
)

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := m.thread.Title
	if title == "" {
		title = fmt.Sprintf("thread %d", m.snap.ThreadID)
	}
	line1 := m.theme.Title.Render(title)

	var parts []string
	if m.snap.TotalPages > 0 {
		parts = append(parts, fmt.Sprintf("pages %d-%d/%d",
			m.snap.CurrentPageMin, m.snap.CurrentPageMax, m.snap.TotalPages))
	}
	if m.thread.ReplyCount > 0 {
		parts = append(parts, fmt.Sprintf("%d replies", m.thread.ReplyCount))
	}
	if m.thread.Meta.AgreeCount > 0 || m.thread.Meta.HasAgreed {
		mark := ""
		if m.thread.Meta.HasAgreed {
			mark = "✓"
		}
		parts = append(parts, fmt.Sprintf("%d agrees%s", m.thread.Meta.AgreeCount, mark))
	}
	if m.thread.Meta.CollectStatus == store.Collected {
		parts = append(parts, "★ favorited")
	}
	if m.snap.SeeAuthorOnly {
		parts = append(parts, "author only")
	}
	line2 := m.theme.Meta.Render(strings.Join(parts, "  ·  "))

	return lipgloss.JoinVertical(lipgloss.Left, line1, line2, "")
}

func (m Model) footerView() string {
	var status string
	switch {
	case m.snap.Status == session.StatusLoading:
		status = m.spin.View() + " loading thread"
	case m.snap.Status == session.StatusError:
		status = m.theme.Error.Render("error: " + errText(m.snap.Err))
	case m.snap.LoadingMore:
		status = m.spin.View() + " loading more"
	case m.snap.LoadingPrevious:
		status = m.spin.View() + " loading previous"
	case m.snap.LoadingLatest:
		status = m.spin.View() + " checking for new posts"
	case len(m.snap.LatestBatch) > 0:
		status = m.theme.Agreed.Render(fmt.Sprintf("%d new posts beyond this page (r to refresh)", len(m.snap.LatestBatch)))
	case m.notice != "":
		status = m.theme.Error.Render(m.notice)
	default:
		status = m.theme.Faint.Render(m.edgeHint())
	}
	return status + "\n" + m.help.View(m.keys)
}

func (m Model) edgeHint() string {
	switch {
	case m.snap.HasMore && m.snap.HasPrevious:
		return "m: more  p: previous"
	case m.snap.HasMore:
		return "m: more"
	case m.snap.HasPrevious:
		return "p: previous"
	default:
		return "end of thread"
	}
}

// syncViewport rebuilds the post list content and keeps the selection in
// view.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	lines := make([]string, 0, len(m.posts)*4)
	offset := 0
	selectedLine := 0
	for i, p := range m.posts {
		if i == m.selected {
			selectedLine = offset
		}
		block := m.renderPost(p, i == m.selected)
		lines = append(lines, block)
		offset += lipgloss.Height(block)
	}
	m.vp.SetContent(strings.Join(lines, "\n"))

	if selectedLine < m.vp.YOffset {
		m.vp.SetYOffset(selectedLine)
	} else if selectedLine >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(selectedLine - m.vp.Height + 1)
	}
}

func (m Model) renderPost(p store.PostEntity, selected bool) string {
	author := p.AuthorName
	if author == "" {
		author = fmt.Sprintf("user %d", p.AuthorID)
	}
	floor := fmt.Sprintf("#%d", p.Floor)
	if p.Floor == 1 {
		floor = "#1 op"
	}

	head := m.theme.Author.Render(author) + "  " + m.theme.Meta.Render(floor)
	if p.Time > 0 {
		head += "  " + m.theme.Meta.Render(time.Unix(p.Time, 0).Format("2006-01-02 15:04"))
	}
	if p.Meta.AgreeCount > 0 || p.Meta.HasAgreed {
		mark := ""
		if p.Meta.HasAgreed {
			mark = "✓"
		}
		head += "  " + m.theme.Agreed.Render(fmt.Sprintf("+%d%s", p.Meta.AgreeCount, mark))
	}
	if m.deps.Store.IsPostUpdating(p.ThreadID, p.ID) {
		head += "  " + m.theme.Faint.Render("updating")
	}
	if selected {
		head = m.theme.Selected.Render("> ") + head
	} else {
		head = "  " + head
	}

	body := m.theme.Body.Render(indent(p.Content, "  "))
	if p.SubReplyCount > 0 {
		body += "\n" + m.theme.Faint.Render(fmt.Sprintf("  %d replies", p.SubReplyCount))
	}
	return head + "\n" + body + "\n"
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func errText(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
