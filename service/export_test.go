// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import "time"

// SetClock replaces the service clock.
func (s *Service) SetClock(now func() time.Time) { s.now = now }
