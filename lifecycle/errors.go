/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lifecycle

import "errors"

// Admission errors. Each one is local to the offending action: the order
// and its executions are left exactly as they were.
var (
	// ErrOrderNotFound means no order exists with the given id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateClOrdID means a submit collided with an accepted order.
	ErrDuplicateClOrdID = errors.New("duplicate ClOrdID")

	// ErrUnsupportedOrderType means stop or stop-limit was requested.
	ErrUnsupportedOrderType = errors.New("unsupported order type")

	// ErrIllegalTransition means the order is not in a state that admits
	// the requested action.
	ErrIllegalTransition = errors.New("order cannot be executed")

	// ErrSymbolUnknown means the order's symbol is absent from the
	// universe, so no reference price exists to fill against.
	ErrSymbolUnknown = errors.New("symbol not in universe")

	// ErrLimitNotCrossed means the reference price does not satisfy the
	// order's limit price.
	ErrLimitNotCrossed = errors.New("limit price not crossed")

	// ErrFOKNotFullyFillable means a fill-or-kill order cannot be
	// completed by this single fill.
	ErrFOKNotFullyFillable = errors.New("FOK not fully fillable")

	// ErrOnlyNewRejectable means a reject was attempted on an order that
	// has already progressed past new.
	ErrOnlyNewRejectable = errors.New("only new orders can be rejected")

	// ErrInvalidQuantity means a non-positive fill quantity was requested.
	ErrInvalidQuantity = errors.New("fill quantity must be positive")
)
