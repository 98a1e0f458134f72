/*
 * MIT License
 *
 * Copyright (c) 2022-2025  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package nats

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// EventKind identifies the display operation carried by an Event
type EventKind uint8

const (
	EventCreate EventKind = iota + 1
	EventUpdate
	EventDelete
	EventNotify
)

// String returns the event kind name
func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventUpdate:
		return "update"
	case EventDelete:
		return "delete"
	case EventNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// Event is published on <prefix>.<channel> for every display operation.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	Kind        EventKind     `cbor:"1,keyasint"`
	Timestamp   time.Time     `cbor:"2,keyasint"`
	Handle      string        `cbor:"3,keyasint,omitempty"`
	Channel     string        `cbor:"4,keyasint"`
	Owner       string        `cbor:"5,keyasint,omitempty"`
	Title       string        `cbor:"6,keyasint,omitempty"`
	Description string        `cbor:"7,keyasint,omitempty"`
	Status      string        `cbor:"8,keyasint,omitempty"`
	Left        time.Duration `cbor:"9,keyasint,omitempty"`
	Total       time.Duration `cbor:"10,keyasint,omitempty"`
	Protected   bool          `cbor:"11,keyasint,omitempty"`
	Message     string        `cbor:"12,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	if encMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Sprintf("failed to create display CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Sprintf("failed to create display CBOR decoder mode: %v", err))
	}
}

// Encode encodes an Event to CBOR
func Encode(event Event) ([]byte, error) {
	return encMode.Marshal(event)
}

// Decode decodes an Event published by the Display
func Decode(data []byte) (Event, error) {
	var event Event
	if err := decMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}
