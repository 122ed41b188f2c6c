package billing

import (
	"testing"
	"time"

	"github.com/GabrielSantos777/planix/internal/domain"
)

func TestCycleBucket(t *testing.T) {
	tests := []struct {
		name       string
		date       time.Time
		closingDay int
		wantMonth  time.Month
		wantYear   int
	}{
		{
			name:       "before closing day stays in own month",
			date:       time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
			closingDay: 5,
			wantMonth:  time.March,
			wantYear:   2024,
		},
		{
			name:       "on or after closing day posts to next month",
			date:       time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			closingDay: 5,
			wantMonth:  time.April,
			wantYear:   2024,
		},
		{
			name:       "exactly on closing day rolls over",
			date:       time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
			closingDay: 5,
			wantMonth:  time.April,
			wantYear:   2024,
		},
		{
			name:       "day before closing day stays",
			date:       time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
			closingDay: 5,
			wantMonth:  time.March,
			wantYear:   2024,
		},
		{
			name:       "december rollover increments year",
			date:       time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC),
			closingDay: 5,
			wantMonth:  time.January,
			wantYear:   2025,
		},
		{
			name:       "december before closing day stays in december",
			date:       time.Date(2024, time.December, 2, 0, 0, 0, 0, time.UTC),
			closingDay: 5,
			wantMonth:  time.December,
			wantYear:   2024,
		},
		{
			name:       "closing day 1 always rolls",
			date:       time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			closingDay: 1,
			wantMonth:  time.July,
			wantYear:   2024,
		},
		{
			name:       "closing day 31 almost never rolls",
			date:       time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
			closingDay: 31,
			wantMonth:  time.June,
			wantYear:   2024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			month, year := CycleBucket(tt.date, tt.closingDay)
			if month != tt.wantMonth || year != tt.wantYear {
				t.Errorf("CycleBucket(%v, %d) = (%v, %d), want (%v, %d)",
					tt.date.Format("2006-01-02"), tt.closingDay, month, year, tt.wantMonth, tt.wantYear)
			}
		})
	}
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name       string
		month      time.Month
		year       int
		dueDay     int
		closingDay int
		want       time.Time
	}{
		{
			name:       "due day after closing day falls in bucket month",
			month:      time.April,
			year:       2024,
			dueDay:     15,
			closingDay: 5,
			want:       time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "due day before closing day falls in next month",
			month:      time.April,
			year:       2024,
			dueDay:     3,
			closingDay: 25,
			want:       time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "december bucket with early due day wraps the year",
			month:      time.December,
			year:       2024,
			dueDay:     5,
			closingDay: 28,
			want:       time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := &domain.CreditCard{DueDay: tt.dueDay, ClosingDay: tt.closingDay}
			got := DueDate(tt.month, tt.year, card)
			if !got.Equal(tt.want) {
				t.Errorf("DueDate(%v %d, due=%d close=%d) = %v, want %v",
					tt.month, tt.year, tt.dueDay, tt.closingDay, got, tt.want)
			}
		})
	}
}
