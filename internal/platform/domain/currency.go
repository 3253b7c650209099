package domain

// CurrencyUSD is the settlement currency for every booking.
const CurrencyUSD = "USD"
