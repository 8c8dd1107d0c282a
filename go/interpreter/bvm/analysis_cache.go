// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package bvm

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kiln-vm/kiln/go/kiln"
)

// defaultAnalysisCacheSize is the number of analysed codes retained if no
// other size is configured.
const defaultAnalysisCacheSize = 4096

// maxCachedCodeLength is the length limit for codes retained in the cache.
// Longer codes are analysed on every run.
const maxCachedCodeLength = 1<<14 + 1<<13 // = 24_576 bytes

// analyzer produces code analyses, reusing results for codes with a known
// hash.
type analyzer struct {
	cache *lru.Cache[kiln.Hash, *codeAnalysis]
}

// newAnalyzer creates an analyzer caching up to cacheSize results. If
// cacheSize is 0 a default size is used, if negative no cache is used.
func newAnalyzer(cacheSize int) (*analyzer, error) {
	if cacheSize == 0 {
		cacheSize = defaultAnalysisCacheSize
	}
	if cacheSize < 0 {
		return &analyzer{}, nil
	}
	cache, err := lru.New[kiln.Hash, *codeAnalysis](cacheSize)
	if err != nil {
		return nil, err
	}
	return &analyzer{cache: cache}, nil
}

// analyze returns the analysis of the given code. If codeHash is not nil, it
// is assumed to be the hash of code and is used as the cache key.
func (a *analyzer) analyze(code []byte, codeHash *kiln.Hash) *codeAnalysis {
	if a.cache == nil || codeHash == nil {
		return analyzeCode(code)
	}
	if res, found := a.cache.Get(*codeHash); found {
		return res
	}
	res := analyzeCode(code)
	if len(code) <= maxCachedCodeLength {
		a.cache.Add(*codeHash, res)
	}
	return res
}
