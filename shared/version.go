package shared

// Version of the voicelive module.
const Version = "0.1.0"
