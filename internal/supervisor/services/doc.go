// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package services adapts components without a Serve method to suture.Service.

HTTPServerService drives an *http.Server through ListenAndServe and a
timed Shutdown. CloserService keeps resources open until the tree stops and
then closes them in reverse order.

The websocket hub, the sync scheduler and the health monitor implement
Serve themselves and are added to the tree directly.
*/
package services
