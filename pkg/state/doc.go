// Package state defines persistence-facing contracts for navigator history
// snapshots.
//
// Responsibilities:
//   - Store[T] only loads/saves a single snapshot for a single Ref.
//   - Recorder adapts a Store[nav.HistorySnapshot] to nav.HistoryPersister so
//     a navigator can restore its stack after a reload.
//   - The nav package stays persistence-agnostic; all storage logic lives
//     behind Store implementations supplied by consumers.
//
// Data flow:
//
//	nav.Navigator -> Recorder -> Store.Save(Ref{Domain, SessionID}, snapshot)
//
// Deterministic keys:
//
//	Ref.Identifier() yields "session/<domain>/<session>" or, when a tenant is
//	set, "tenant/<tenant>/<domain>/<session>".
package state
