package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadDescriptor is returned for field or method descriptors that cannot be parsed.
var ErrBadDescriptor = errors.New("malformed descriptor")

// Category is the numeric or reference kind of a stack value.
type Category uint8

// Categories.
const (
	CategoryNone Category = iota
	CategoryInt
	CategoryLong
	CategoryFloat
	CategoryDouble
	CategoryReference
)

var categoryNames = [...]string{"void", "int", "long", "float", "double", "reference"}

func (c Category) String() string {
	if int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", c)
	}

	return categoryNames[c]
}

// Width returns the number of stack words a value of this category occupies.
func (c Category) Width() int {
	switch c {
	case CategoryInt, CategoryFloat, CategoryReference:
		return 1
	case CategoryLong, CategoryDouble:
		return 2
	case CategoryNone:
		return 0
	}

	return 0
}

// MethodType is a parsed method descriptor.
type MethodType struct {
	Args   []Category
	Return Category
}

// ArgWords returns the stack words consumed by the arguments.
func (t MethodType) ArgWords() int {
	words := 0
	for _, arg := range t.Args {
		words += arg.Width()
	}

	return words
}

// ParseFieldDescriptor returns the category of a field descriptor such as "I"
// or "Ljava/lang/String;".
func ParseFieldDescriptor(desc string) (Category, error) {
	category, rest, err := parseType(desc)
	if err != nil {
		return CategoryNone, err
	}

	if rest != "" || category == CategoryNone {
		return CategoryNone, fmt.Errorf("%w: field %q", ErrBadDescriptor, desc)
	}

	return category, nil
}

// ParseMethodDescriptor parses a descriptor such as "(IJLjava/lang/String;)V".
func ParseMethodDescriptor(desc string) (MethodType, error) {
	if !strings.HasPrefix(desc, "(") {
		return MethodType{}, fmt.Errorf("%w: method %q", ErrBadDescriptor, desc)
	}

	rest := desc[1:]

	var t MethodType

	for {
		if rest == "" {
			return MethodType{}, fmt.Errorf("%w: method %q", ErrBadDescriptor, desc)
		}

		if rest[0] == ')' {
			rest = rest[1:]
			break
		}

		category, tail, err := parseType(rest)
		if err != nil {
			return MethodType{}, fmt.Errorf("method %q: %w", desc, err)
		}

		if category == CategoryNone {
			return MethodType{}, fmt.Errorf("%w: void argument in %q", ErrBadDescriptor, desc)
		}

		t.Args = append(t.Args, category)
		rest = tail
	}

	ret, tail, err := parseType(rest)
	if err != nil {
		return MethodType{}, fmt.Errorf("method %q: %w", desc, err)
	}

	if tail != "" {
		return MethodType{}, fmt.Errorf("%w: trailing %q in %q", ErrBadDescriptor, tail, desc)
	}

	t.Return = ret

	return t, nil
}

func parseType(desc string) (Category, string, error) {
	if desc == "" {
		return CategoryNone, "", fmt.Errorf("%w: empty type", ErrBadDescriptor)
	}

	switch desc[0] {
	case 'V':
		return CategoryNone, desc[1:], nil
	case 'Z', 'B', 'C', 'S', 'I':
		return CategoryInt, desc[1:], nil
	case 'J':
		return CategoryLong, desc[1:], nil
	case 'F':
		return CategoryFloat, desc[1:], nil
	case 'D':
		return CategoryDouble, desc[1:], nil
	case 'L':
		end := strings.IndexByte(desc, ';')
		if end < 0 {
			return CategoryNone, "", fmt.Errorf("%w: unterminated class type %q", ErrBadDescriptor, desc)
		}

		return CategoryReference, desc[end+1:], nil
	case '[':
		elem, rest, err := parseType(desc[1:])
		if err != nil {
			return CategoryNone, "", err
		}

		if elem == CategoryNone {
			return CategoryNone, "", fmt.Errorf("%w: void array element", ErrBadDescriptor)
		}

		return CategoryReference, rest, nil
	}

	return CategoryNone, "", fmt.Errorf("%w: unexpected %q", ErrBadDescriptor, desc[0])
}
