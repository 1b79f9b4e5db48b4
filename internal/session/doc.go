// Package session mirrors the backend's per-user session on the client.
//
// # Overview
//
// The image server keeps one session per browser cookie: the active model
// tab, up to three reference images, the last generated images, the save
// preference and the selected aspect ratio. The client never owns that
// state. It keeps a copy in a Store, changes it only through the mutators
// here, and replaces it wholesale from the index page whenever the server
// may have diverged (after a model switch, or after a failed mutation).
//
// # Models
//
// A Catalog maps each tab's display name to a backend model type. Two
// types, R2I and GEM_PIX, consume reference images; switching to any other
// model makes the server drop the reference list.
//
// # Manager
//
// Manager performs the session-level round trips:
//
//   - Switch: POST active_tab, then reload the whole session.
//   - SetSavePreference / SetAspectRatio: patch one setting.
//   - Clear: reset results, references and settings.
//   - Reload: refetch the index page and adopt its snapshot.
//
// The active model is an explicit field updated by Switch; views read it
// from the Store and never the other way round.
package session
