package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/snapframe/internal/annotation"
	"github.com/example/snapframe/internal/editor"
)

func newEngine(t *testing.T, opts ...Option) (*Engine, *editor.Editor) {
	t.Helper()
	ed := editor.New(editor.WithIDGenerator(annotation.SequenceGenerator("a")))
	e := New(ed, opts...)
	t.Cleanup(e.Close)
	return e, ed
}

func drag(e *Engine, from, to annotation.Point) {
	e.PointerDown(from)
	mid := annotation.Pt((from.X+to.X)/2, (from.Y+to.Y)/2)
	e.PointerMove(mid)
	e.PointerMove(to)
	e.PointerUp(to)
}

func TestDrawRectangleScenario(t *testing.T) {
	var switched []Tool
	e, ed := newEngine(t, WithToolChange(func(tl Tool) { switched = append(switched, tl) }))
	e.SetTool(ToolRectangle)

	drag(e, annotation.Pt(10, 10), annotation.Pt(100, 80))

	list := ed.Annotations()
	require.Len(t, list, 1)
	r, ok := list[0].(annotation.Rectangle)
	require.True(t, ok)
	assert.Equal(t, annotation.Box{X: 10, Y: 10, Width: 90, Height: 70}, r.Box)
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Equal(t, r.ID, e.Selected())
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Equal(t, []Tool{ToolRectangle, ToolSelect}, switched)
}

func TestDrawingIsNotRecordedUntilPointerUp(t *testing.T) {
	e, ed := newEngine(t)
	e.SetTool(ToolArrow)
	e.PointerDown(annotation.Pt(0, 0))
	e.PointerMove(annotation.Pt(50, 50))

	assert.Equal(t, PhaseDrawing, e.Phase())
	assert.Empty(t, ed.Annotations())
	assert.False(t, ed.CanUndo())
	require.NotNil(t, e.Draft())
	assert.Len(t, e.Layer(), 1, "draft shown on the interactive layer")
}

func TestDegenerateDrawDiscarded(t *testing.T) {
	for _, tool := range []Tool{ToolRectangle, ToolCircle, ToolLine, ToolArrow} {
		t.Run(tool.String(), func(t *testing.T) {
			e, ed := newEngine(t)
			e.SetTool(tool)
			v := ed.Version()

			e.PointerDown(annotation.Pt(20, 20))
			e.PointerUp(annotation.Pt(21, 20))

			assert.Empty(t, ed.Annotations())
			assert.Equal(t, v, ed.Version())
			assert.False(t, ed.CanUndo())
			assert.Equal(t, tool, e.Tool(), "tool kept after a discarded draw")
			assert.Equal(t, PhaseIdle, e.Phase())
		})
	}
}

func TestLabelsNumberedByCount(t *testing.T) {
	e, ed := newEngine(t)
	points := []annotation.Point{{X: 300, Y: 10}, {X: 5, Y: 200}, {X: 150, Y: 150}}
	for _, p := range points {
		e.SetTool(ToolNumber)
		e.PointerDown(p)
		e.PointerUp(p)
	}
	list := ed.Annotations()
	require.Len(t, list, 3)
	for i, a := range list {
		l, ok := a.(annotation.Label)
		require.True(t, ok)
		assert.Equal(t, i+1, l.Number)
	}
}

func TestLabelNumbersLeaveGapsAfterDelete(t *testing.T) {
	e, ed := newEngine(t)
	place := func(p annotation.Point) {
		e.SetTool(ToolNumber)
		e.PointerDown(p)
		e.PointerUp(p)
	}
	place(annotation.Pt(10, 10))
	place(annotation.Pt(100, 10))
	place(annotation.Pt(200, 10))

	require.True(t, ed.DeleteAnnotation(ed.Annotations()[0].AnnotationID()))
	place(annotation.Pt(300, 10))

	var numbers []int
	for _, a := range ed.Annotations() {
		numbers = append(numbers, a.(annotation.Label).Number)
	}
	assert.Equal(t, []int{2, 3, 3}, numbers)
}

func TestTextToolPlacesPlaceholder(t *testing.T) {
	e, ed := newEngine(t, WithPlaceholder("Note"))
	e.SetTool(ToolText)
	e.PointerDown(annotation.Pt(40, 40))
	e.PointerUp(annotation.Pt(40, 40))

	list := ed.Annotations()
	require.Len(t, list, 1)
	txt := list[0].(annotation.Text)
	assert.Equal(t, "Note", txt.Content)
	assert.Equal(t, annotation.Pt(40, 40), txt.Origin)

	require.True(t, e.SetSelectedText("Changed"))
	assert.Equal(t, "Changed", ed.Annotations()[0].(annotation.Text).Content)
	require.True(t, e.SetSelectedText(" "))
	assert.Empty(t, ed.Annotations())
}

func TestCompleteSelectedTextJoinsPlacement(t *testing.T) {
	e, ed := newEngine(t, WithPlaceholder("Note"))
	e.SetTool(ToolText)
	e.PointerDown(annotation.Pt(40, 40))
	e.PointerUp(annotation.Pt(40, 40))

	require.True(t, e.CompleteSelectedText("Typed"))
	assert.Equal(t, "Typed", ed.Annotations()[0].(annotation.Text).Content)
	require.True(t, ed.Undo())
	assert.Empty(t, ed.Annotations())
	assert.False(t, ed.CanUndo())
}

func TestDragCommitsOneHistoryEntry(t *testing.T) {
	e, ed := newEngine(t)
	id := ed.AddAnnotation(annotation.Rectangle{Box: annotation.Box{X: 10, Y: 10, Width: 50, Height: 50}})
	v := ed.Version()

	e.PointerDown(annotation.Pt(30, 30))
	assert.Equal(t, PhaseDragging, e.Phase())
	for x := 31.0; x <= 60; x++ {
		e.PointerMove(annotation.Pt(x, 30))
	}
	assert.Equal(t, v, ed.Version(), "moves are not recorded")
	e.PointerUp(annotation.Pt(60, 40))

	assert.Equal(t, v+1, ed.Version())
	a, _ := ed.State().Find(id)
	assert.Equal(t, annotation.Box{X: 40, Y: 20, Width: 50, Height: 50}, a.Bounds())

	require.True(t, ed.Undo())
	a, _ = ed.State().Find(id)
	assert.Equal(t, annotation.Box{X: 10, Y: 10, Width: 50, Height: 50}, a.Bounds())
}

func TestClickWithoutMoveRecordsNothing(t *testing.T) {
	e, ed := newEngine(t)
	id := ed.AddAnnotation(annotation.Rectangle{Box: annotation.Box{X: 10, Y: 10, Width: 50, Height: 50}})
	v := ed.Version()

	e.PointerDown(annotation.Pt(30, 30))
	e.PointerUp(annotation.Pt(30, 30))
	assert.Equal(t, v, ed.Version())
	assert.Equal(t, id, e.Selected())
}

func TestHitTestPrefersTopmost(t *testing.T) {
	e, ed := newEngine(t)
	ed.AddAnnotation(annotation.Rectangle{Box: annotation.Box{X: 0, Y: 0, Width: 100, Height: 100}})
	top := ed.AddAnnotation(annotation.Circle{Box: annotation.Box{X: 25, Y: 25, Width: 50, Height: 50}})

	e.PointerDown(annotation.Pt(50, 50))
	e.PointerUp(annotation.Pt(50, 50))
	assert.Equal(t, top, e.Selected())

	e.PointerDown(annotation.Pt(500, 500))
	e.PointerUp(annotation.Pt(500, 500))
	assert.Empty(t, e.Selected(), "clicking empty canvas clears selection")
}

func TestResizeViaHandle(t *testing.T) {
	e, ed := newEngine(t)
	id := ed.AddAnnotation(annotation.Rectangle{Box: annotation.Box{X: 10, Y: 10, Width: 90, Height: 70}})
	require.True(t, e.Select(id))

	e.PointerDown(annotation.Pt(100, 80))
	assert.Equal(t, PhaseResizing, e.Phase())
	e.PointerMove(annotation.Pt(120, 90))
	assert.Equal(t, annotation.Box{X: 10, Y: 10, Width: 110, Height: 80}, e.SelectedAnnotation().Bounds())
	e.PointerUp(annotation.Pt(130, 100))

	a, _ := ed.State().Find(id)
	assert.Equal(t, annotation.Box{X: 10, Y: 10, Width: 120, Height: 90}, a.Bounds())
}

func TestResizeToNothingIsDropped(t *testing.T) {
	e, ed := newEngine(t)
	id := ed.AddAnnotation(annotation.Line{Start: annotation.Pt(0, 0), End: annotation.Pt(50, 0)})
	require.True(t, e.Select(id))
	v := ed.Version()

	e.PointerDown(annotation.Pt(50, 0))
	require.Equal(t, PhaseResizing, e.Phase())
	e.PointerUp(annotation.Pt(0, 0))
	assert.Equal(t, v, ed.Version())
}

func TestKeyDelete(t *testing.T) {
	e, ed := newEngine(t)
	id := ed.AddAnnotation(annotation.Rectangle{Box: annotation.Box{Width: 10, Height: 10}})
	require.True(t, e.Select(id))

	assert.False(t, e.KeyDelete(true), "text input has focus")
	assert.True(t, ed.State().Has(id))

	assert.True(t, e.KeyDelete(false))
	assert.False(t, ed.State().Has(id))
	assert.Empty(t, e.Selected())
	assert.False(t, e.KeyDelete(false))
}

func TestSelectionClearedWhenAnnotationDisappears(t *testing.T) {
	e, ed := newEngine(t)
	e.SetTool(ToolRectangle)
	drag(e, annotation.Pt(0, 0), annotation.Pt(40, 40))
	id := e.Selected()
	require.NotEmpty(t, id)

	require.True(t, ed.Undo())
	assert.Empty(t, e.Selected(), "undo removed the selected annotation")

	require.True(t, ed.Redo())
	require.True(t, e.Select(id))
	require.True(t, ed.DeleteAnnotation(id))
	assert.Empty(t, e.Selected())
}

func TestUndoDuringDragCancelsGesture(t *testing.T) {
	e, ed := newEngine(t)
	ed.SetBlur(3)
	id := ed.AddAnnotation(annotation.Rectangle{Box: annotation.Box{X: 0, Y: 0, Width: 40, Height: 40}})

	e.PointerDown(annotation.Pt(20, 20))
	e.PointerMove(annotation.Pt(30, 30))
	require.True(t, ed.Undo())

	assert.Equal(t, PhaseIdle, e.Phase())
	assert.False(t, e.PointerUp(annotation.Pt(40, 40)))
	assert.False(t, ed.State().Has(id))
}

func TestSetToolAbandonsGesture(t *testing.T) {
	e, ed := newEngine(t)
	e.SetTool(ToolLine)
	e.PointerDown(annotation.Pt(0, 0))
	e.PointerMove(annotation.Pt(50, 50))
	e.SetTool(ToolCircle)
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Nil(t, e.Draft())
	e.PointerUp(annotation.Pt(60, 60))
	assert.Empty(t, ed.Annotations())
}

func TestNudgeAndRestyle(t *testing.T) {
	e, ed := newEngine(t)
	id := ed.AddAnnotation(annotation.Arrow{Start: annotation.Pt(0, 0), End: annotation.Pt(10, 10)})
	assert.False(t, e.Nudge(1, 0), "nothing selected")
	require.True(t, e.Select(id))

	require.True(t, e.Nudge(1, 2))
	a, _ := ed.State().Find(id)
	assert.Equal(t, annotation.Pt(1, 2), a.(annotation.Arrow).Start)

	s := annotation.DefaultStyle()
	s.BorderWidth = 9
	require.True(t, e.Restyle(s))
	a, _ = ed.State().Find(id)
	assert.Equal(t, 9.0, annotation.StyleOf(a).BorderWidth)
}

func TestCancel(t *testing.T) {
	e, ed := newEngine(t)
	assert.False(t, e.Cancel())
	e.SetTool(ToolRectangle)
	e.PointerDown(annotation.Pt(0, 0))
	e.PointerMove(annotation.Pt(30, 30))
	assert.True(t, e.Cancel())
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Empty(t, ed.Annotations())
}

func TestParseTool(t *testing.T) {
	for _, tl := range Tools() {
		got, err := ParseTool(tl.String())
		require.NoError(t, err)
		assert.Equal(t, tl, got)
	}
	got, err := ParseTool("rect")
	require.NoError(t, err)
	assert.Equal(t, ToolRectangle, got)
	_, err = ParseTool("lasso")
	assert.Error(t, err)
}
