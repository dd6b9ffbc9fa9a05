package main

const keeperBanner = `
 _  __
| |/ /___  ___ _ __   ___ _ __
| ' // _ \/ _ \ '_ \ / _ \ '__|
| . \  __/  __/ |_) |  __/ |
|_|\_\___|\___| .__/ \___|_|
              |_|
`
