// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package batch

// Delta returns the remote ids absent from local, in remote order and
// without duplicates. Presence is the only criterion: an id that exists
// locally is never re-fetched, even if its remote content changed.
func Delta(remote, local []string) []string {
	known := make(map[string]struct{}, len(local))
	for _, id := range local {
		if id != "" {
			known[id] = struct{}{}
		}
	}

	out := make([]string, 0, len(remote))
	for _, id := range remote {
		if id == "" {
			continue
		}
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
