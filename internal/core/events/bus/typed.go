package bus

import "fmt"

// Listen0 registers a listener that ignores the payload.
func Listen0(b *Bus, event string, fn func()) Subscription {
	return b.AddListener(event, func(...any) { fn() })
}

// Listen1 registers a listener expecting one argument of type A. Deliveries
// whose payload does not match are dropped and logged.
func Listen1[A any](b *Bus, event string, fn func(A)) Subscription {
	return b.AddListener(event, func(args ...any) {
		a, ok := arg[A](args, 0)
		if !ok {
			b.mismatch(event, 0, typeName[A](), args)
			return
		}
		fn(a)
	})
}

// Listen2 registers a listener expecting two arguments.
func Listen2[A, B any](b *Bus, event string, fn func(A, B)) Subscription {
	return b.AddListener(event, func(args ...any) {
		a, ok := arg[A](args, 0)
		if !ok {
			b.mismatch(event, 0, typeName[A](), args)
			return
		}
		bv, ok := arg[B](args, 1)
		if !ok {
			b.mismatch(event, 1, typeName[B](), args)
			return
		}
		fn(a, bv)
	})
}

func arg[T any](args []any, i int) (T, bool) {
	var zero T
	if i >= len(args) {
		return zero, false
	}
	if args[i] == nil {
		// an untyped nil only satisfies interface payloads
		return zero, any(zero) == nil
	}
	v, ok := args[i].(T)
	return v, ok
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", &zero)[1:]
}
