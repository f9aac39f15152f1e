// Package fuzztests houses Go fuzz harnesses for the AST front end
// (document bytes -> astio -> sema -> mir). They guard against panics and
// hangs on arbitrary documents and check that every file the checker accepts
// lowers to valid MIR.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
