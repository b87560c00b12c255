/*
Package hslang implements an embeddable scripting language with lexically
scoped closures, classes, and in-language tests.

The interpreter walks the syntax tree directly. Source text is lexed and
parsed into a Program, the resolver annotates every variable reference with
the number of scopes between it and its declaration, and the VM executes the
annotated program against a global scope supplied by the host.

To embed the interpreter, create a VM with NewVM, optionally replace its
Stdout, Results, Modules, and Options, then run code with DoString, or parse
once with Parse and run the program any number of times with Interpret.
Hosts expose Go functions to programs through native modules; see Register
and FuncModule.

Language Primer

Hello World:

	print "Hello, world!";

Variables are declared with var and functions with fun. Functions close over
the scope they are declared in, not a copy of it, so assignments made after a
closure is created are visible through it:

	fun counter() {
		var n = 0;
		fun next() {
			n += 1;
			return n;
		}
		return next;
	}
	var c = counter();
	c(); c();
	print c(); // 3

Classes have fields, methods, and at most one constructor. Inside methods,
fields may be referred to by name alone or through this. A class may extend
another class unless that class is declared final, and instances of dynamic
classes accept fields their class never declared:

	class Point {
		var x = 0;
		var y = 0;
		constructor(x0, y0) {
			x = x0;
			this.y = y0;
		}
		fun norm1() { return x + y; }
	}
	final class Point3 extends Point {
		var z = 0;
		constructor(x0, y0, z0) {
			super.constructor(x0, y0);
			z = z0;
		}
		fun norm1() { return super.norm1() + z; }
	}

Loops include while, do-while, C-style for, foreach over arrays, ranges,
strings, and iterable host values, and repeat, which runs its body a fixed
number of times. break and continue work in all of them. A switch statement
runs the first case equal to its subject; cases never fall through:

	foreach (i in 1..10) {
		switch (i % 3) {
		case 0:
			continue;
		default:
			print i;
		}
	}

Note that continue is not allowed directly inside a switch case, since switch
is not a loop. The example above is rejected when it runs.

Tests record results in the VM's ResultCollector. A test body runs in a fresh
scope inside the global scope, so it can't see local variables around it. The
truthiness of the value it returns is the result; a test that never returns
records nothing:

	test "addition" {
		return 1 + 1 == 2;
	}

Native modules are imported with module, which binds every function the
module provides into the global scope, or declared one function at a time
with native fun, which binds into the current scope:

	module text;
	native fun math.sqrt(x);
	print upper("abc") + sqrt(16);

An import fails if it would replace an existing global binding, unless the
VM's options permit ambiguous external functions.
*/
package hslang
