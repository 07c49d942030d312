// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"time"
)

// defaultMeetingLink is the demo conferencing link for all bookings.
const defaultMeetingLink = "https://meet.example.com/nestwell-demo"

// Calendar books meetings.
//
// Description:
//
//	Books the next available demo slot: tomorrow, one hour from the current
//	wall-clock time, UTC. The clock is injectable for tests.
//
// Thread Safety: Calendar is safe for concurrent use.
type Calendar struct {
	now func() time.Time
}

// NewCalendar creates a Calendar using the system clock.
func NewCalendar() *Calendar {
	return &Calendar{now: time.Now}
}

// NewCalendarWithClock creates a Calendar with an explicit clock. Used by
// tests that need reproducible slot times.
func NewCalendarWithClock(now func() time.Time) *Calendar {
	return &Calendar{now: now}
}

// BookMeeting reserves a slot of the given duration for the user.
func (c *Calendar) BookMeeting(ctx context.Context, userID string, durationMin int) (Meeting, error) {
	_ = ctx
	_ = userID
	_ = durationMin

	when := c.now().UTC().Add(25 * time.Hour).Format("2006-01-02 15:04 UTC")
	return Meeting{When: when, Link: defaultMeetingLink}, nil
}
