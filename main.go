// Command hh-vacancy-crawler collects vacancies from hh.ru.
package main

import (
	"github.com/JakeFAU/hh-vacancy-crawler/cmd"
)

func main() {
	cmd.Execute()
}
