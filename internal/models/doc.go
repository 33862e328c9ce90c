// Package models defines the core domain records for the back-office service.
//
// # Record kinds
//
// Six collections, all flat records owned by exactly one user identity:
//   - ServiceOrder: a customer job with line items and payments
//   - CasualExpense: a one-off expense
//   - BudgetExpense: a recurring expense with a due-date cycle
//   - License: a software license sold to a client
//   - PasswordEntry: a stored service credential
//   - ServerCredential: VPN and per-server user credentials for a client host
//
// # Design principles
//
//  1. Ownership by foreign key: every record carries OwnerID; there is no
//     nested containment between record kinds and no cross-kind referential
//     integrity at this layer (the hosted backend's row policies are the
//     authority).
//  2. Derived fields are recomputed, never trusted: ServiceOrder totals,
//     License profit and BudgetExpense due dates come from the Recalculate /
//     Profit / NextDue methods, not from stored values.
//  3. Dates that came from user forms stay as ISO "2006-01-02" strings, the
//     format the original data was stored in; timestamps are Unix seconds.
package models
