/*
 * interfaces.go, part of cljgrid.
 *
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package chem

import (
	"errors"
	"fmt"
	"strings"
)

//Errors

// Errorer is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else. Critical tells the warnings, which can be logged and ignored,
// from the errors that must stop the current operation.
type Errorer interface {
	Error() string
	Decorate(string) []string
	Critical() bool
}

// ErrorKind tells what went wrong.
type ErrorKind int

const (
	//ConfigurationError signals inconsistent input, such as atom batches with mismatched lengths
	ConfigurationError ErrorKind = iota
	//CapacityWarning signals that the grid spacing had to be coarsened to respect the size cap.
	CapacityWarning
	//ApproximationBreach signals that probe atoms left the region where the grid is valid.
	ApproximationBreach
	//SerializationVersionError signals a persisted grid with an unknown format version.
	SerializationVersionError
	//NotFound signals a reference to a molecule the forcefield doesn't contain
	NotFound
)

func (K ErrorKind) String() string {
	switch K {
	case ConfigurationError:
		return "configuration error"
	case CapacityWarning:
		return "capacity warning"
	case ApproximationBreach:
		return "approximation breach"
	case SerializationVersionError:
		return "serialization version error"
	case NotFound:
		return "not found"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(K))
	}
}

// Error is the error type of the library. Only CapacityWarning errors are non-critical.
type Error struct {
	kind     ErrorKind
	message  string
	deco     []string
	critical bool
}

// NewError returns an Error of the given kind. The caller, if not empty,
// is the first decoration of the error.
func NewError(kind ErrorKind, message string, caller string) Error {
	E := Error{kind: kind, message: message, critical: kind != CapacityWarning}
	if caller != "" {
		E.deco = []string{caller}
	}
	return E
}

func (E Error) Error() string {
	if len(E.deco) == 0 {
		return fmt.Sprintf("cljgrid %s: %s", E.kind, E.message)
	}
	return fmt.Sprintf("cljgrid %s: %s (%s)", E.kind, E.message, strings.Join(E.deco, " <- "))
}

// Kind returns the kind of the error
func (E Error) Kind() ErrorKind { return E.kind }

// Critical returns true if the error must stop the current operation.
func (E Error) Critical() bool { return E.critical }

// Decorate returns the decoration slice with deco added at the end.
// As the receiver is a value, use the Decorate function to get an error
// that keeps the new decoration.
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// Is makes errors.Is match any Error of the same kind as target.
func (E Error) Is(target error) bool {
	T, ok := target.(Error)
	return ok && T.kind == E.kind
}

// Decorate adds the caller to err, if it is an Error, and wraps it otherwise.
func Decorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var E Error
	if errors.As(err, &E) {
		E.deco = append(append([]string(nil), E.deco...), caller)
		return E
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// IsKind returns true if err is, or wraps, an Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var E Error
	return errors.As(err, &E) && E.kind == kind
}

// IsCritical returns false only for Errors that are warnings.
// Any other non-nil error is critical.
func IsCritical(err error) bool {
	if err == nil {
		return false
	}
	var E Errorer
	if errors.As(err, &E) {
		return E.Critical()
	}
	return true
}

// Sentinel errors, to be used with errors.Is
var (
	ErrConfiguration = Error{kind: ConfigurationError, critical: true}
	ErrCapacity      = Error{kind: CapacityWarning}
	ErrOutOfGrid     = Error{kind: ApproximationBreach, critical: true}
	ErrVersion       = Error{kind: SerializationVersionError, critical: true}
	ErrNotFound      = Error{kind: NotFound, critical: true}
)
