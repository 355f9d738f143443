// Package dataprocessing turns the raw voltage database file into values.
//
// # Components
//
//  1. Split and TrimLineTerminator: line level tokenizing
//  2. ParseValue: coerces the first field of a record to a float64
//  3. Decoder and CountLines: record reading and the pre-sizing count pass
//  4. RecordScanner: a lazy iter.Seq2 of per-record outcomes that applies the
//     skip or fail error policy
//  5. ThresholdMonitor: flags samples outside the configured voltage limits
//
// # Usage
//
//	scanner := dataprocessing.NewRecordScanner(dataprocessing.ScannerOptions{
//	    Delimiter: ',',
//	    Policy:    domain.ErrorPolicySkip,
//	})
//	for out, err := range scanner.Scan(ctx, f) {
//	    if err != nil {
//	        return err
//	    }
//	    if out.Kind == dataprocessing.OutcomeSample {
//	        series.Append(out.Value)
//	    }
//	}
//
// Malformed records surface as PARSING AppErrors carrying "line" and "raw"
// context. Under the skip policy they are logged at WARN and dropped, so
// sample indexes stay dense.
package dataprocessing
