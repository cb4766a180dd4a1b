package home

import (
	"slices"
	"testing"
	"time"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/davecgh/go-spew/spew"
	"github.com/slack-go/slack"
)

func TestRenderEmpty(t *testing.T) {
	view := Render(nil, nil)

	if e, g := slack.VTHomeTab, view.Type; e != g {
		t.Errorf("view.Type: expected '%v', got '%v'", e, g)
	}

	expected := []slack.MessageBlockType{
		slack.MBTHeader,
		slack.MBTDivider,
		slack.MBTSection,
		slack.MBTAction,
		slack.MBTDivider,
		slack.MBTSection,
	}

	assertBlockTypes(t, view.Blocks.BlockSet, expected)

	actions, ok := view.Blocks.BlockSet[3].(*slack.ActionBlock)
	if !ok {
		t.Fatalf("view.Blocks.BlockSet[3]: expected *slack.ActionBlock, got %T", view.Blocks.BlockSet[3])
	}

	actionIDs := make([]string, 0)
	for _, el := range actions.Elements.ElementSet {
		button, ok := el.(*slack.ButtonBlockElement)
		if !ok {
			t.Fatalf("expected *slack.ButtonBlockElement, got %T", el)
		}
		actionIDs = append(actionIDs, button.ActionID)
	}

	if e, g := []string{ActionAddTask, ActionClearCompleted}, actionIDs; !slices.Equal(e, g) {
		t.Errorf("actionIDs: expected '%v', got '%v'", e, g)
	}

	empty := view.Blocks.BlockSet[5].(*slack.SectionBlock)
	if e, g := emptyText, empty.Text.Text; e != g {
		t.Errorf("empty.Text.Text: expected '%v', got '%v'", e, g)
	}
}

func TestRenderTasks(t *testing.T) {
	owner := model.NewUser("U001", "alice")
	now := time.Now()

	active := []model.Task{
		model.RestoreTask("t1", "buy milk", false, owner, "C001", now),
		model.RestoreTask("t2", "walk the dog", false, owner, "C001", now.Add(time.Second)),
	}

	completed := []model.Task{
		model.RestoreTask("t3", "water plants", true, owner, "C002", now.Add(2*time.Second)),
	}

	view := Render(active, completed)

	expected := []slack.MessageBlockType{
		slack.MBTHeader,
		slack.MBTDivider,
		slack.MBTSection,
		slack.MBTAction,
		slack.MBTDivider,
		slack.MBTHeader,
		slack.MBTSection,
		slack.MBTSection,
		slack.MBTHeader,
		slack.MBTSection,
	}

	assertBlockTypes(t, view.Blocks.BlockSet, expected)

	type row struct {
		Index    int
		Text     string
		ActionID string
		Value    string
		Style    slack.Style
	}

	rows := []row{
		{6, "• buy milk", ActionCompleteTask, "t1", ""},
		{7, "• walk the dog", ActionCompleteTask, "t2", ""},
		{9, "~water plants~", ActionDeleteTask, "t3", slack.StyleDanger},
	}

	for _, r := range rows {
		section, ok := view.Blocks.BlockSet[r.Index].(*slack.SectionBlock)
		if !ok {
			t.Fatalf("block %d: expected *slack.SectionBlock, got %T", r.Index, view.Blocks.BlockSet[r.Index])
		}

		if e, g := r.Text, section.Text.Text; e != g {
			t.Errorf("block %d text: expected '%v', got '%v'", r.Index, e, g)
		}

		if section.Accessory == nil || section.Accessory.ButtonElement == nil {
			t.Fatalf("block %d: expected a button accessory, got %s", r.Index, spew.Sdump(section.Accessory))
		}

		button := section.Accessory.ButtonElement

		if e, g := r.ActionID, button.ActionID; e != g {
			t.Errorf("block %d action id: expected '%v', got '%v'", r.Index, e, g)
		}

		if e, g := r.Value, button.Value; e != g {
			t.Errorf("block %d value: expected '%v', got '%v'", r.Index, e, g)
		}

		if e, g := r.Style, button.Style; e != g {
			t.Errorf("block %d style: expected '%v', got '%v'", r.Index, e, g)
		}
	}
}

func TestRenderOnlyCompleted(t *testing.T) {
	owner := model.NewUser("U001", "alice")

	completed := []model.Task{
		model.RestoreTask("t1", "buy milk", true, owner, "C001", time.Now()),
	}

	view := Render(nil, completed)

	expected := []slack.MessageBlockType{
		slack.MBTHeader,
		slack.MBTDivider,
		slack.MBTSection,
		slack.MBTAction,
		slack.MBTDivider,
		slack.MBTHeader,
		slack.MBTSection,
	}

	assertBlockTypes(t, view.Blocks.BlockSet, expected)

	header := view.Blocks.BlockSet[5].(*slack.HeaderBlock)
	if e, g := completedTitle, header.Text.Text; e != g {
		t.Errorf("header.Text.Text: expected '%v', got '%v'", e, g)
	}
}

func TestRenderWithNotice(t *testing.T) {
	view := Render(nil, nil, WithNotice("could not complete the task"))

	expected := []slack.MessageBlockType{
		slack.MBTHeader,
		slack.MBTContext,
		slack.MBTDivider,
		slack.MBTSection,
		slack.MBTAction,
		slack.MBTDivider,
		slack.MBTSection,
	}

	assertBlockTypes(t, view.Blocks.BlockSet, expected)
}

func TestAddTaskValues(t *testing.T) {
	state := &slack.ViewState{
		Values: map[string]map[string]slack.BlockAction{
			BlockTask: {
				ActionTask: {Value: "buy milk"},
			},
			BlockChannel: {
				ActionChannel: {SelectedConversation: "C001"},
			},
		},
	}

	text, channelID := AddTaskValues(state)

	if e, g := "buy milk", text; e != g {
		t.Errorf("text: expected '%v', got '%v'", e, g)
	}

	if e, g := "C001", channelID; e != g {
		t.Errorf("channelID: expected '%v', got '%v'", e, g)
	}

	text, channelID = AddTaskValues(nil)
	if text != "" || channelID != "" {
		t.Errorf("AddTaskValues(nil): expected empty values, got '%s' and '%s'", text, channelID)
	}

	modal := AddTaskModal()
	if e, g := CallbackAddTask, modal.CallbackID; e != g {
		t.Errorf("modal.CallbackID: expected '%v', got '%v'", e, g)
	}

	if e, g := 2, len(modal.Blocks.BlockSet); e != g {
		t.Errorf("len(modal.Blocks.BlockSet): expected '%v', got '%v'", e, g)
	}
}

func assertBlockTypes(t *testing.T, blocks []slack.Block, expected []slack.MessageBlockType) {
	t.Helper()

	if e, g := len(expected), len(blocks); e != g {
		t.Fatalf("len(blocks): expected %d, got %d (%s)", e, g, spew.Sdump(blocks))
	}

	for i, b := range blocks {
		if e, g := expected[i], b.BlockType(); e != g {
			t.Errorf("blocks[%d].BlockType(): expected '%v', got '%v'", i, e, g)
		}
	}
}
