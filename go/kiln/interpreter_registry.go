// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package kiln

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// Interpreters are looked up by name in a process wide registry. Packages
// providing an interpreter register it in their init function, so importing
// a package, e.g. for its side effects, makes its interpreters available to
// tools like the kiln driver.

// NewInterpreter creates an instance of the interpreter registered under the
// given name. Names are case-insensitive. At most one configuration value may
// be passed; its type is defined by the interpreter, and without one the
// interpreter's defaults are used.
func NewInterpreter(name string, config ...any) (Interpreter, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("invalid configuration: too many arguments")
	}
	factory := GetInterpreterFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("interpreter not found: %s", name)
	}
	c := any(nil)
	if len(config) > 0 {
		c = config[0]
	}
	return factory(c)
}

// GetInterpreterFactory returns the factory registered under the given name,
// or nil if there is none.
func GetInterpreterFactory(name string) InterpreterFactory {
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	return interpreterRegistry[strings.ToLower(name)]
}

// RegisteredInterpreterNames lists the names of all registered interpreters
// in lexicographical order.
func RegisteredInterpreterNames() []string {
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	names := maps.Keys(interpreterRegistry)
	slices.Sort(names)
	return names
}

// RegisterInterpreterFactory binds a factory to a name. Registering a nil
// factory or a name that is already taken, ignoring case, fails.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) error {
	key := strings.ToLower(name)
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for interpreter %q", key)
	}
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	if _, found := interpreterRegistry[key]; found {
		return fmt.Errorf("interpreter %q is already registered", key)
	}
	interpreterRegistry[key] = factory
	return nil
}

// InterpreterFactory is the type of a function that creates a new Interpreter
// using an interpreter specific configuration.
type InterpreterFactory func(config any) (Interpreter, error)

// interpreterRegistry maps lower-case names to factories.
var interpreterRegistry = map[string]InterpreterFactory{}

// interpreterRegistryLock guards interpreterRegistry.
var interpreterRegistryLock sync.Mutex
