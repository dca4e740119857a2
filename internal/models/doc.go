// Package models defines the core domain models for Munera.
//
// # Entities
//
//   - User: a login identity with a typed role set and an optional monthly income
//   - Person: someone money moves between; optionally linked to a User by username
//   - Category: an owner-scoped label every expense must carry
//   - Expense: a cost fronted by a payer for a beneficiary
//   - Event: an optional grouping of people
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are stored as ID strings (UUID format)
// 2. **Owner scoping**: people, categories, expenses and events carry the ID of
// the user who created them
// 3. **Derived labels stay derived**: an expense's classification depends on who
// is looking at it, so it is computed on read and never stored
// 4. **Optimistic locking**: every mutable entity carries a Version that the
// store checks and bumps on update
package models
