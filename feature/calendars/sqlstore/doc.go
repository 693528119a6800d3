// Package sqlstore stores calendars in a SQL database through GORM.
//
// Two tables are used: calendars(id, title, account) and entries, one row per
// single entry or recurring series root. FetchEntries expands recurring rows
// into occurrences sharing the row ID. Works with SQLite and MySQL.
package sqlstore
