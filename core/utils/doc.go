// Package utils provides common utility functions for the parent-reconciler application.
// It includes helpers for converting loosely typed record values (JSON numbers, driver
// values, strings) into the strict numeric keys used during reconciliation.
package utils
