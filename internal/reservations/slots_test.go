package reservations

import "testing"

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	if len(slots) != 23 {
		t.Fatalf("expected 23 slots, got %d", len(slots))
	}
	if slots[0] != "12:00" {
		t.Fatalf("expected first slot 12:00, got %s", slots[0])
	}
	if slots[len(slots)-1] != "23:00" {
		t.Fatalf("expected last slot 23:00, got %s", slots[len(slots)-1])
	}
	for _, slot := range slots {
		if !IsValidSlot(slot) {
			t.Fatalf("generated slot %s fails validation", slot)
		}
	}
}

func TestIsValidSlot(t *testing.T) {
	invalid := []string{"", "11:30", "23:30", "12:15", " 12:00", "12:00 ", "24:00", "9:00"}
	for _, slot := range invalid {
		if IsValidSlot(slot) {
			t.Fatalf("expected %q to be invalid", slot)
		}
	}
	valid := []string{"12:00", "12:30", "22:30", "23:00"}
	for _, slot := range valid {
		if !IsValidSlot(slot) {
			t.Fatalf("expected %q to be valid", slot)
		}
	}
}

func TestIsValidTable(t *testing.T) {
	if IsValidTable(0) || IsValidTable(21) {
		t.Fatal("expected out-of-range tables to be invalid")
	}
	if !IsValidTable(1) || !IsValidTable(20) {
		t.Fatal("expected boundary tables to be valid")
	}
}
