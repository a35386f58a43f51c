// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package database

import (
	"fmt"
	"sort"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/Fantom-foundation/Arbor/go/database/iavl"
	"github.com/Fantom-foundation/Arbor/go/database/jmt"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/maps"
)

// UnsupportedConfiguration is the error returned if an unknown tree variant
// has been requested.
const UnsupportedConfiguration = common.ConstError("unsupported configuration")

// Variant names an implementation of the versioned tree. The variant is a
// property of the chain configuration: roots produced by different variants
// are not comparable.
type Variant string

const (
	IavlVariant      Variant = "iavl"
	JellyfishVariant Variant = "jmt"
)

// TreeConfig summarizes the variant independent tree parameters.
type TreeConfig struct {
	RetainVersions int
	NodeCacheSize  int
	Logger         log.Logger
}

// TreeFactory opens a tree of a specific variant on top of a node store.
type TreeFactory func(store nodestore.NodeStore, config TreeConfig) (commit.VersionedTree, error)

var treeFactoryRegistry = map[Variant]TreeFactory{
	IavlVariant: func(store nodestore.NodeStore, config TreeConfig) (commit.VersionedTree, error) {
		tree, err := iavl.NewTree(store, iavl.Config{
			RetainVersions: config.RetainVersions,
			NodeCacheSize:  config.NodeCacheSize,
			Logger:         config.Logger,
		})
		if err != nil {
			return nil, err
		}
		return tree, nil
	},
	JellyfishVariant: func(store nodestore.NodeStore, config TreeConfig) (commit.VersionedTree, error) {
		tree, err := jmt.NewTree(store, jmt.Config{
			RetainVersions: config.RetainVersions,
			NodeCacheSize:  config.NodeCacheSize,
			Logger:         config.Logger,
		})
		if err != nil {
			return nil, err
		}
		return tree, nil
	},
}

// GetVariantByName resolves a variant from its name.
func GetVariantByName(name string) (Variant, error) {
	variant := Variant(name)
	if _, found := treeFactoryRegistry[variant]; !found {
		return "", fmt.Errorf("%w: unknown tree variant %q, supported are %v", UnsupportedConfiguration, name, GetAllVariants())
	}
	return variant, nil
}

// GetAllVariants lists the names of all supported variants in order.
func GetAllVariants() []Variant {
	res := maps.Keys(treeFactoryRegistry)
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// OpenTree creates an empty tree of the given variant storing its nodes in
// the given store.
func OpenTree(variant Variant, store nodestore.NodeStore, config TreeConfig) (commit.VersionedTree, error) {
	factory, found := treeFactoryRegistry[variant]
	if !found {
		return nil, fmt.Errorf("%w: no registered implementation for variant %q", UnsupportedConfiguration, variant)
	}
	return factory(store, config)
}
