// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package ctxval

import "github.com/actionlang/actionlang/pkg/memsize"

// AddContextData charges counter for v. When deep is true, every child is
// charged too (used when a canonical value is about to be copied into a
// template token and so must be fully accounted); when false only the
// head node is charged (used when merely indexing into an
// already-accounted external context, per spec §9's "deep? parameter
// exists to avoid double-accounting a token by traversal").
func AddContextData(counter *memsize.Counter, v Value, deep bool) error {
	switch v.kind {
	case KindString:
		return counter.Add(memsize.StringCost(v.s))
	case KindArray:
		if err := counter.Add(memsize.MinObjectSize); err != nil {
			return err
		}
		if !deep {
			return nil
		}
		arr, _ := v.Array()
		for i := 0; i < arr.Len(); i++ {
			item, ok := arr.At(i)
			if !ok {
				continue
			}
			if err := AddContextData(counter, item, true); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		if err := counter.Add(memsize.MinObjectSize); err != nil {
			return err
		}
		if !deep {
			return nil
		}
		obj, _ := v.Object()
		for _, k := range obj.Keys() {
			item, ok := obj.Get(k)
			if !ok {
				continue
			}
			if err := counter.Add(memsize.StringCost(k)); err != nil {
				return err
			}
			if err := AddContextData(counter, item, true); err != nil {
				return err
			}
		}
		return nil
	default:
		return counter.Add(memsize.MinObjectSize)
	}
}
