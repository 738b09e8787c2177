package engine

import (
	"reflect"
	"slices"
	"strings"

	"github.com/wippyai/jsonplan/plan"
)

// cursor is the position of one iteration site.
type cursor struct {
	coll reflect.Value
	// iter is the live iterator. For value iterators it points into store.
	iter reflect.Value
	// store holds a value iterator; allocated on first use and reused.
	store   reflect.Value
	mapKeys []reflect.Value
	keys    []string
	key     string
	index   int
	length  int
}

func (c *cursor) reset() {
	c.coll = reflect.Value{}
	c.iter = reflect.Value{}
	if c.store.IsValid() {
		c.store.Elem().SetZero()
	}
	clear(c.mapKeys)
	c.mapKeys = c.mapKeys[:0]
	c.keys = nil
	c.key = ""
	c.index = 0
	c.length = 0
}

// receiver returns v, or its address when the site's methods need a
// pointer receiver. Non-addressable values are copied.
func receiver(v reflect.Value, ptr bool) reflect.Value {
	if !ptr {
		return v
	}
	if v.CanAddr() {
		return v.Addr()
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}

func (c *cursor) init(site *plan.Site, v reflect.Value) {
	c.index = 0
	c.key = ""

	switch site.Kind {
	case plan.SiteArray, plan.SiteSlice:
		c.coll = v
		c.length = v.Len()

	case plan.SiteList:
		c.coll = receiver(v, site.PtrRecv)
		c.length = int(c.coll.Method(site.Len).Call(nil)[0].Int())

	case plan.SiteValueIter:
		it := receiver(v, site.PtrRecv).Method(site.Iter).Call(nil)[0]
		if !c.store.IsValid() {
			c.store = reflect.New(site.IterType)
		}
		c.store.Elem().Set(it)
		c.iter = c.store

	case plan.SiteRefIter:
		c.iter = receiver(v, site.PtrRecv).Method(site.Iter).Call(nil)[0]

	case plan.SiteMap:
		c.coll = v
		c.mapKeys = append(c.mapKeys[:0], v.MapKeys()...)
		slices.SortFunc(c.mapKeys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		c.length = len(c.mapKeys)

	case plan.SiteKeyedMap:
		c.coll = receiver(v, site.PtrRecv)
		c.keys, _ = c.coll.Method(site.Keys).Call(nil)[0].Interface().([]string)
		c.length = len(c.keys)
	}
}

// next advances the site and returns the element, or false when done.
func (c *cursor) next(site *plan.Site) (reflect.Value, bool) {
	switch site.Kind {
	case plan.SiteValueIter, plan.SiteRefIter:
		if isNil(c.iter) {
			return reflect.Value{}, false
		}
		if !c.iter.Method(site.Next).Call(nil)[0].Bool() {
			return reflect.Value{}, false
		}
		return c.iter.Method(site.Value).Call(nil)[0], true
	}

	if c.index >= c.length {
		return reflect.Value{}, false
	}
	i := c.index
	c.index++

	switch site.Kind {
	case plan.SiteArray, plan.SiteSlice:
		return c.coll.Index(i), true
	case plan.SiteList:
		return c.coll.Method(site.At).Call([]reflect.Value{reflect.ValueOf(i)})[0], true
	case plan.SiteMap:
		k := c.mapKeys[i]
		c.key = k.String()
		return c.coll.MapIndex(k), true
	case plan.SiteKeyedMap:
		c.key = c.keys[i]
		return c.coll.Method(site.Get).Call([]reflect.Value{reflect.ValueOf(c.key)})[0], true
	}
	return reflect.Value{}, false
}
