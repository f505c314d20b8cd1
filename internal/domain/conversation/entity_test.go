package conversation

import (
	"strings"
	"testing"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

func TestNewOwnership(t *testing.T) {
	if _, err := New(nil, "", "pulse-1"); err == nil {
		t.Error("expected error with no owner")
	}

	c, err := New(nil, "sess-abc", "pulse-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.MemberID != nil || c.SessionKey != "sess-abc" {
		t.Error("expected session-owned conversation")
	}

	id := common.NewID()
	c, err = New(&id, "sess-abc", "pulse-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SessionKey != "" {
		t.Error("authenticated conversations must drop the session key")
	}
	if c.MemberID == nil || *c.MemberID != id {
		t.Error("expected member-owned conversation")
	}
}

func TestAppendSetsTitle(t *testing.T) {
	c, _ := New(nil, "sess-abc", "pulse-1")

	if _, err := c.Append(RoleSystem, "context preamble", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Title != "" {
		t.Error("system messages must not set the title")
	}

	if _, err := c.Append(RoleUser, "  What plans do you offer?  ", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Title != "What plans do you offer?" {
		t.Errorf("expected title from first user message, got %q", c.Title)
	}

	if _, err := c.Append(RoleUser, "And how much is the annual one?", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Title != "What plans do you offer?" {
		t.Error("later user messages must not overwrite the title")
	}
}

func TestTitleFromCapsLength(t *testing.T) {
	long := strings.Repeat("a", 80)
	if got := TitleFrom(long); len([]rune(got)) != 50 {
		t.Errorf("expected 50-rune title, got %d runes", len([]rune(got)))
	}
	if got := TitleFrom("short"); got != "short" {
		t.Errorf("expected short title unchanged, got %q", got)
	}
}

func TestHistorySkipsSystemMessages(t *testing.T) {
	c, _ := New(nil, "sess-abc", "pulse-1")
	ms := int64(1200)

	_, _ = c.Append(RoleSystem, "preamble", nil)
	_, _ = c.Append(RoleUser, "first", nil)
	_, _ = c.Append(RoleAssistant, "reply one", &ms)
	_, _ = c.Append(RoleUser, "second", nil)
	_, _ = c.Append(RoleAssistant, "reply two", &ms)

	all := c.History(0)
	if len(all) != 4 {
		t.Fatalf("expected 4 non-system messages, got %d", len(all))
	}
	for _, m := range all {
		if m.Role == RoleSystem {
			t.Fatal("history must not contain system messages")
		}
	}

	tail := c.History(2)
	if len(tail) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(tail))
	}
	if tail[0].Content != "second" || tail[1].Content != "reply two" {
		t.Errorf("expected most recent window, got %q / %q", tail[0].Content, tail[1].Content)
	}
}

func TestAppendValidation(t *testing.T) {
	c, _ := New(nil, "sess-abc", "pulse-1")
	if _, err := c.Append(MessageRole("bot"), "hello", nil); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := c.Append(RoleUser, "", nil); err == nil {
		t.Error("expected error for empty content")
	}
}
