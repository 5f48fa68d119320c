package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
)

func sampleEvent() BookingEvent {
	b := model.Booking{
		ID: 12, Reference: "BK-ABCDEF12", UserID: 3,
		ServiceType: model.ServiceCar, ServiceID: 8,
		Status: model.StatusConfirmed, PaymentStatus: model.PaymentUnpaid,
		TotalPrice: decimal.RequireFromString("150"), Currency: "USD",
	}
	ev := NewBookingEvent(EventBookingStatusChanged, b, 5, model.RoleCarOwner)
	ev.FromStatus = model.StatusPending
	ev.OccurredAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return ev
}

func TestNewBookingEventFormatsPrice(t *testing.T) {
	ev := sampleEvent()
	if ev.TotalPrice != "150.00" {
		t.Fatalf("total = %q", ev.TotalPrice)
	}
	if ev.BookingID != 12 || ev.ActorRole != model.RoleCarOwner {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestFormatLine(t *testing.T) {
	line := FormatLine(sampleEvent())
	want := "[2026-03-01T10:00:00Z] booking.status_changed | booking_id=12 | ref=BK-ABCDEF12 | user_id=3 | service=CAR#8" +
		" | status=PENDING->CONFIRMED | payment=UNPAID | total=150.00 USD | actor=CAR_OWNER#5\n"
	if line != want {
		t.Fatalf("line:\n got %q\nwant %q", line, want)
	}

	ev := sampleEvent()
	ev.FromStatus = ""
	ev.Reason = "plans changed"
	line = FormatLine(ev)
	if !strings.Contains(line, "| status=CONFIRMED |") || !strings.HasSuffix(line, "reason=\"plans changed\"\n") {
		t.Fatalf("line = %q", line)
	}
}

func TestHandleMessageAppendsToLog(t *testing.T) {
	dir := t.TempDir()
	c := Consumer{LogDir: dir}
	body, err := json.Marshal(sampleEvent())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := c.handleMessage(body); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "booking.log"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", n, data)
	}
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	c := Consumer{LogDir: t.TempDir()}
	if err := c.handleMessage([]byte("{not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := c.handleMessage([]byte(`{"type":"booking.created"}`)); err == nil {
		t.Fatal("expected incomplete event error")
	}
}
