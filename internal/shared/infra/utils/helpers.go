package utils

// Ternary es un operador ternario genérico
func Ternary[T any](condition bool, ifTrue, ifFalse T) T {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// Deref devuelve *p o def si p es nil (campos opcionales de las peticiones).
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
