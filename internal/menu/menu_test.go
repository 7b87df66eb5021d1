package menu

import (
	"reflect"
	"testing"

	"frontdesk-bot/internal/store"
)

func btn(id uint, label string, order int, active bool) store.MenuButton {
	return store.MenuButton{ID: id, Label: label, Order: order, Active: active, ResponseKind: store.KindText}
}

func TestBuildKeyboard_SortsByOrder(t *testing.T) {
	buttons := []store.MenuButton{
		btn(1, "three", 3, true),
		btn(2, "one", 1, true),
		btn(3, "two", 2, true),
	}
	got := BuildKeyboard(buttons)
	want := Layout{{"one", "two"}, {"three"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestBuildKeyboard_SkipsInactiveAndTiesByID(t *testing.T) {
	buttons := []store.MenuButton{
		btn(5, "b", 1, true),
		btn(4, "a", 1, true),
		btn(6, "off", 0, false),
		btn(7, "c", 2, true),
		btn(8, "d", 2, true),
	}
	got := BuildKeyboard(buttons)
	want := Layout{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestBuildKeyboard_EmptyWhenNothingActive(t *testing.T) {
	if got := BuildKeyboard(nil); got != nil {
		t.Fatalf("expected nil layout, got %v", got)
	}
	got := BuildKeyboard([]store.MenuButton{btn(1, "x", 1, false)})
	if !got.Empty() {
		t.Fatalf("expected empty layout, got %v", got)
	}
}

func TestResolve_ExactAndActiveOnly(t *testing.T) {
	prices := btn(1, "Prices", 1, false)
	buttons := []store.MenuButton{prices, btn(2, "Contacts", 2, true)}

	if _, ok := Resolve("Prices", buttons); ok {
		t.Fatalf("inactive button must not resolve")
	}

	buttons[0].Active = true
	got, ok := Resolve("Prices", buttons)
	if !ok || got.ID != 1 {
		t.Fatalf("reactivated button not resolved: %+v %v", got, ok)
	}

	if _, ok := Resolve("prices", buttons); ok {
		t.Fatalf("match must be case-sensitive")
	}
	if _, ok := Resolve("Prices ", buttons); ok {
		t.Fatalf("match must be exact")
	}
}
