// Package fuzztests houses Go fuzz harnesses for the expansion pipeline
// (source -> region scanner -> interleaver) and the Scheme reader. Its goal
// is to smoke test robustness and guard against panics, hangs and broken
// line accounting on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через expand и scheme.Reader и
// проверять инварианты из internal/testkit.
//
// Не делает: вычисление произвольного Scheme-кода (регионы вычисляются
// заглушкой), запись файлов, выполнение CLI.
package fuzztests
