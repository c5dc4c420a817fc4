package domain

// Money is an amount in minor currency units (paise).
type Money int64
